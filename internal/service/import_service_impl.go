package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/civic/internal/db"
	"github.com/alexanderramin/civic/internal/importer"
	"github.com/alexanderramin/civic/internal/repository"
)

type importService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

// NewImportService loads seed files into the catalog in one transaction.
func NewImportService(uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *importService) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	schema, err := importer.LoadCatalogSchema(path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog file: %w", err)
	}
	return s.ImportSchema(ctx, schema)
}

func (s *importService) ImportSchema(ctx context.Context, schema *importer.CatalogSchema) (result *ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"action_count": len(schema.Actions)}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      UseCaseImport,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if errs := importer.ValidateCatalogSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	records := importer.Convert(schema)
	result = &ImportResult{}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		actions := repository.NewSQLiteActionRepo(tx)
		for _, rec := range records {
			_, getErr := actions.GetByID(ctx, rec.ID)
			switch {
			case getErr == nil:
				result.Updated++
			case errors.Is(getErr, repository.ErrNotFound):
				result.Created++
			default:
				return fmt.Errorf("checking action %s: %w", rec.ID, getErr)
			}
			if err := actions.Upsert(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("importing catalog: %w", err)
	}
	fields["created"] = result.Created
	fields["updated"] = result.Updated
	return result, nil
}

func formatValidationErrors(errs []error) error {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = "  - " + e.Error()
	}
	return fmt.Errorf("catalog validation failed:\n%s", strings.Join(msgs, "\n"))
}
