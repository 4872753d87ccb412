package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetViewReturnsDefaultsForNewUser(t *testing.T) {
	svc := NewPreferenceService(newFakePreferenceRepo())

	view, err := svc.GetView(context.Background(), uuid.New().String(), "requests")
	require.NoError(t, err)
	assert.Equal(t, "requests", view.ViewKey)
	assert.Empty(t, view.HiddenColumns)
	assert.JSONEq(t, "{}", string(view.FilterState))
}

func TestToggleColumnHidesThenShows(t *testing.T) {
	svc := NewPreferenceService(newFakePreferenceRepo())
	userID := uuid.New().String()

	view, err := svc.ToggleColumn(context.Background(), userID, "requests", "amount")
	require.NoError(t, err)
	assert.Equal(t, []string{"amount"}, view.HiddenColumns)

	view, err = svc.ToggleColumn(context.Background(), userID, "requests", "status")
	require.NoError(t, err)
	assert.Equal(t, []string{"amount", "status"}, view.HiddenColumns)

	// Toggling again reveals the column
	view, err = svc.ToggleColumn(context.Background(), userID, "requests", "amount")
	require.NoError(t, err)
	assert.Equal(t, []string{"status"}, view.HiddenColumns)
}

func TestToggleColumnRejectsEmptyKey(t *testing.T) {
	svc := NewPreferenceService(newFakePreferenceRepo())

	_, err := svc.ToggleColumn(context.Background(), uuid.New().String(), "requests", "")
	assert.Error(t, err)
}

func TestToggleColumnIsScopedPerView(t *testing.T) {
	svc := NewPreferenceService(newFakePreferenceRepo())
	userID := uuid.New().String()

	_, err := svc.ToggleColumn(context.Background(), userID, "requests", "amount")
	require.NoError(t, err)

	other, err := svc.GetView(context.Background(), userID, "forms")
	require.NoError(t, err)
	assert.Empty(t, other.HiddenColumns)
}

func TestSaveFilterStateRoundTrips(t *testing.T) {
	svc := NewPreferenceService(newFakePreferenceRepo())
	userID := uuid.New().String()
	state := json.RawMessage(`{"statuses":["PENDING"],"search":"chairs"}`)

	view, err := svc.SaveFilterState(context.Background(), userID, "requests", state)
	require.NoError(t, err)
	assert.JSONEq(t, string(state), string(view.FilterState))

	reloaded, err := svc.GetView(context.Background(), userID, "requests")
	require.NoError(t, err)
	assert.JSONEq(t, string(state), string(reloaded.FilterState))
}

func TestSaveFilterStateRejectsInvalidJSON(t *testing.T) {
	svc := NewPreferenceService(newFakePreferenceRepo())

	_, err := svc.SaveFilterState(context.Background(), uuid.New().String(), "requests", json.RawMessage(`{"statuses":`))
	assert.Error(t, err)
}
