package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"formsly/internal/model"
	"formsly/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type SaveFilterStateRequest struct {
	FilterState json.RawMessage `json:"filter_state" binding:"required"`
}

type ToggleColumnRequest struct {
	ColumnKey string `json:"column_key" binding:"required"`
}

type ViewPreferenceResponse struct {
	ViewKey       string          `json:"view_key"`
	HiddenColumns []string        `json:"hidden_columns"`
	FilterState   json.RawMessage `json:"filter_state"`
}

// --- Interface ---

// PreferenceService owns per-user spreadsheet settings. Toggling a column
// only rewrites the preference row, listed data is never refetched here.
type PreferenceService interface {
	GetView(ctx context.Context, userID, viewKey string) (*ViewPreferenceResponse, error)
	ToggleColumn(ctx context.Context, userID, viewKey, columnKey string) (*ViewPreferenceResponse, error)
	SaveFilterState(ctx context.Context, userID, viewKey string, state json.RawMessage) (*ViewPreferenceResponse, error)
}

type preferenceService struct {
	repo repository.PreferenceRepository
}

func NewPreferenceService(repo repository.PreferenceRepository) PreferenceService {
	return &preferenceService{repo: repo}
}

// --- Implementation ---

func (s *preferenceService) GetView(ctx context.Context, userID, viewKey string) (*ViewPreferenceResponse, error) {
	uID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	pref, err := s.repo.Get(ctx, uID, viewKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load view preference: %w", err)
	}
	return toPreferenceResponse(pref)
}

func (s *preferenceService) ToggleColumn(ctx context.Context, userID, viewKey, columnKey string) (*ViewPreferenceResponse, error) {
	uID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	if columnKey == "" {
		return nil, fmt.Errorf("column key must not be empty")
	}

	pref, err := s.repo.Get(ctx, uID, viewKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load view preference: %w", err)
	}

	hidden, err := decodeHiddenColumns(pref.HiddenColumns)
	if err != nil {
		return nil, err
	}

	if hidden[columnKey] {
		delete(hidden, columnKey)
	} else {
		hidden[columnKey] = true
	}

	encoded, err := encodeHiddenColumns(hidden)
	if err != nil {
		return nil, err
	}
	pref.HiddenColumns = encoded

	if err := s.repo.Upsert(ctx, pref); err != nil {
		return nil, fmt.Errorf("failed to save view preference: %w", err)
	}
	return toPreferenceResponse(pref)
}

func (s *preferenceService) SaveFilterState(ctx context.Context, userID, viewKey string, state json.RawMessage) (*ViewPreferenceResponse, error) {
	uID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	if !json.Valid(state) {
		return nil, fmt.Errorf("filter state must be valid JSON")
	}

	pref, err := s.repo.Get(ctx, uID, viewKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load view preference: %w", err)
	}
	pref.FilterState = string(state)

	if err := s.repo.Upsert(ctx, pref); err != nil {
		return nil, fmt.Errorf("failed to save filter state: %w", err)
	}
	return toPreferenceResponse(pref)
}

// --- Helpers ---

func decodeHiddenColumns(raw string) (map[string]bool, error) {
	var keys []string
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &keys); err != nil {
			return nil, fmt.Errorf("corrupt hidden column set: %w", err)
		}
	}
	hidden := make(map[string]bool, len(keys))
	for _, k := range keys {
		hidden[k] = true
	}
	return hidden, nil
}

func encodeHiddenColumns(hidden map[string]bool) (string, error) {
	keys := make([]string, 0, len(hidden))
	for k := range hidden {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	encoded, err := json.Marshal(keys)
	if err != nil {
		return "", fmt.Errorf("failed to encode hidden columns: %w", err)
	}
	return string(encoded), nil
}

func toPreferenceResponse(pref *model.ViewPreference) (*ViewPreferenceResponse, error) {
	hidden, err := decodeHiddenColumns(pref.HiddenColumns)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(hidden))
	for k := range hidden {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	state := pref.FilterState
	if state == "" {
		state = "{}"
	}
	return &ViewPreferenceResponse{
		ViewKey:       pref.ViewKey,
		HiddenColumns: keys,
		FilterState:   json.RawMessage(state),
	}, nil
}
