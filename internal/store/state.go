package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/leadforge/leadforge-back/internal/domain"
)

const maxSearchHistory = 50

// StateService wraps the KV backend with typed accessors. Dates cross the
// store as RFC3339 strings, so every read path rehydrates them into
// time.Time before handing records to callers.
type StateService struct {
	kv KV
}

func NewStateService(kv KV) *StateService {
	return &StateService{kv: kv}
}

type storedSearchEntry struct {
	ID          string `json:"id"`
	Query       string `json:"query"`
	Location    string `json:"location,omitempty"`
	ResultCount int    `json:"result_count"`
	SearchedAt  string `json:"searched_at"`
}

type storedAnalyzedBusiness struct {
	Business   domain.BusinessRecord `json:"business"`
	Score      float64               `json:"opportunity_score"`
	AnalyzedAt string                `json:"analyzed_at"`
}

// AppendSearch prepends the entry and trims history to its bound.
func (s *StateService) AppendSearch(ctx context.Context, entry domain.SearchHistoryEntry) error {
	existing, err := s.SearchHistory(ctx)
	if err != nil {
		return err
	}

	updated := append([]domain.SearchHistoryEntry{entry}, existing...)
	if len(updated) > maxSearchHistory {
		updated = updated[:maxSearchHistory]
	}

	stored := make([]storedSearchEntry, 0, len(updated))
	for _, item := range updated {
		stored = append(stored, storedSearchEntry{
			ID:          item.ID,
			Query:       item.Query,
			Location:    item.Location,
			ResultCount: item.ResultCount,
			SearchedAt:  item.SearchedAt.UTC().Format(time.RFC3339),
		})
	}
	return s.setJSON(ctx, KeySearchHistory, stored)
}

func (s *StateService) SearchHistory(ctx context.Context) ([]domain.SearchHistoryEntry, error) {
	var stored []storedSearchEntry
	if err := s.getJSON(ctx, KeySearchHistory, &stored); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return []domain.SearchHistoryEntry{}, nil
		}
		return nil, err
	}

	entries := make([]domain.SearchHistoryEntry, 0, len(stored))
	for _, item := range stored {
		searchedAt, err := parseStoredTime(item.SearchedAt)
		if err != nil {
			return nil, fmt.Errorf("rehydrate search history date: %w", err)
		}
		entries = append(entries, domain.SearchHistoryEntry{
			ID:          item.ID,
			Query:       item.Query,
			Location:    item.Location,
			ResultCount: item.ResultCount,
			SearchedAt:  searchedAt,
		})
	}
	return entries, nil
}

// SaveAnalyzed upserts a scored business by business id.
func (s *StateService) SaveAnalyzed(ctx context.Context, record domain.AnalyzedBusiness) error {
	existing, err := s.AnalyzedBusinesses(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for index := range existing {
		if existing[index].Business.ID == record.Business.ID {
			existing[index] = record
			replaced = true
			break
		}
	}
	if !replaced {
		existing = append(existing, record)
	}

	stored := make([]storedAnalyzedBusiness, 0, len(existing))
	for _, item := range existing {
		stored = append(stored, storedAnalyzedBusiness{
			Business:   item.Business,
			Score:      item.Score,
			AnalyzedAt: item.AnalyzedAt.UTC().Format(time.RFC3339),
		})
	}
	return s.setJSON(ctx, KeyAnalyzedBusinesses, stored)
}

func (s *StateService) AnalyzedBusinesses(ctx context.Context) ([]domain.AnalyzedBusiness, error) {
	var stored []storedAnalyzedBusiness
	if err := s.getJSON(ctx, KeyAnalyzedBusinesses, &stored); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return []domain.AnalyzedBusiness{}, nil
		}
		return nil, err
	}

	records := make([]domain.AnalyzedBusiness, 0, len(stored))
	for _, item := range stored {
		analyzedAt, err := parseStoredTime(item.AnalyzedAt)
		if err != nil {
			return nil, fmt.Errorf("rehydrate analyzed business date: %w", err)
		}
		records = append(records, domain.AnalyzedBusiness{
			Business:   item.Business,
			Score:      item.Score,
			AnalyzedAt: analyzedAt,
		})
	}
	return records, nil
}

func (s *StateService) SetOnboardingComplete(ctx context.Context, complete bool) error {
	return s.setJSON(ctx, KeyOnboardingComplete, complete)
}

func (s *StateService) OnboardingComplete(ctx context.Context) (bool, error) {
	var complete bool
	if err := s.getJSON(ctx, KeyOnboardingComplete, &complete); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return complete, nil
}

// SaveTaskSnapshot mirrors the current task list so the dashboard can
// recover in-flight builds after a reload.
func (s *StateService) SaveTaskSnapshot(ctx context.Context, tasks []domain.BuildingTask) error {
	return s.setJSON(ctx, KeyBackgroundTasks, tasks)
}

func (s *StateService) TaskSnapshot(ctx context.Context) ([]domain.BuildingTask, error) {
	var tasks []domain.BuildingTask
	if err := s.getJSON(ctx, KeyBackgroundTasks, &tasks); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return []domain.BuildingTask{}, nil
		}
		return nil, err
	}
	return tasks, nil
}

func (s *StateService) getJSON(ctx context.Context, key string, target any) error {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode state key %s: %w", key, err)
	}
	return nil
}

func (s *StateService) setJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode state key %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, raw)
}

func parseStoredTime(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}
