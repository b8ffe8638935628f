package service

import (
	"context"
	"errors"

	"github.com/plradhouane-dev/gmao/internal/apperr"
	"github.com/plradhouane-dev/gmao/internal/infra"
	"github.com/plradhouane-dev/gmao/internal/model"
	"github.com/plradhouane-dev/gmao/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportService renders printable intervention reports.
type ReportService interface {
	// ExportInterventionPDF writes the report to disk and returns its path.
	ExportInterventionPDF(ctx context.Context, sess *model.Session, id uuid.UUID) (string, error)
}

type reportService struct {
	repo        repository.InterventionRepository
	storagePath string
	currency    string
}

func NewReportService(repo repository.InterventionRepository, storagePath, currency string) ReportService {
	return &reportService{repo: repo, storagePath: storagePath, currency: currency}
}

func (s *reportService) ExportInterventionPDF(ctx context.Context, sess *model.Session, id uuid.UUID) (string, error) {
	iv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NotFoundf("intervention not found")
		}
		return "", err
	}
	return infra.GenerateInterventionPDF(iv, s.currency, s.storagePath)
}
