package analysis

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Wirandy/ATARES/apperror"
)

// AnalysisService persists and lists analysis records.
type AnalysisService struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewAnalysisService creates an AnalysisService.
func NewAnalysisService(db *pgxpool.Pool, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{db: db, logger: logger}
}

// Save persists an analysis owned by userID. The owner comes from the
// validated session, never from the request body.
func (s *AnalysisService) Save(ctx context.Context, userID int64, req SaveRequest) (*Analysis, error) {
	record := &Analysis{
		UserID:          userID,
		ImageURL:        req.ImageURL,
		PimpleCount:     *req.PimpleCount,
		Recommendations: req.Recommendations,
	}

	query := `INSERT INTO analyses (user_id, image_url, pimple_count, recommendations)
              VALUES ($1, $2, $3, $4)
              RETURNING id, created_at`
	err := s.db.QueryRow(ctx, query, record.UserID, record.ImageURL, record.PimpleCount, record.Recommendations).
		Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		s.logger.Error("failed to save analysis", zap.Int64("user_id", userID), zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to save analysis", err)
	}

	return record, nil
}

// History returns the caller's analyses, newest first.
func (s *AnalysisService) History(ctx context.Context, userID int64) ([]Analysis, error) {
	query := `SELECT id, user_id, image_url, pimple_count, recommendations, created_at
              FROM analyses WHERE user_id = $1 ORDER BY id DESC`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		s.logger.Error("failed to load history", zap.Int64("user_id", userID), zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to load history", err)
	}
	defer rows.Close()

	analyses := make([]Analysis, 0)
	for rows.Next() {
		var a Analysis
		if err := rows.Scan(&a.ID, &a.UserID, &a.ImageURL, &a.PimpleCount, &a.Recommendations, &a.CreatedAt); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan analysis row", err)
		}
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read history rows", err)
	}

	return analyses, nil
}
