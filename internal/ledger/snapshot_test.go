package ledger

import (
	"context"
	"encoding/json"
	"testing"

	"money-tracking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	src := newFixture(t, 100000, 5000)
	seedLedger(t, src, 21)
	ctx := context.Background()

	gone := src.expense(t, src.bank, 10)
	require.NoError(t, src.svc.DeleteTransaction(ctx, gone))
	require.NoError(t, src.svc.SetSetting(ctx, models.SettingTheme, "dark"))

	snap, err := src.svc.Snapshot(ctx)
	require.NoError(t, err)
	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	dst := newFixture(t, 1, 1)
	dst.expense(t, dst.bank, 1)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.NoError(t, dst.svc.Restore(ctx, &decoded))

	wantAccounts, err := src.svc.ListAccounts(ctx)
	require.NoError(t, err)
	gotAccounts, err := dst.svc.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, gotAccounts, len(wantAccounts))
	for i := range wantAccounts {
		assert.Equal(t, wantAccounts[i].ID, gotAccounts[i].ID)
		assert.Equal(t, wantAccounts[i].Balance, gotAccounts[i].Balance)
	}

	var deleted models.Transaction
	require.NoError(t, dst.db.Unscoped().First(&deleted, "id = ?", gone).Error)
	assert.True(t, deleted.DeletedAt.Valid)

	theme, err := dst.svc.GetSetting(ctx, models.SettingTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)

	plans, err := dst.svc.ListPlanifications(ctx, "")
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Len(t, plans[0].Items, 4)
}

func TestRestoreRejectsUnknownVersion(t *testing.T) {
	f := newFixture(t, 0, 0)
	err := f.svc.Restore(context.Background(), &Snapshot{Version: SnapshotVersion + 1})
	assert.ErrorIs(t, err, ErrValidation)
}
