package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/reelcast/internal/audit/domain"
	ledgerDomain "github.com/allisson/reelcast/internal/ledger/domain"
	lockDomain "github.com/allisson/reelcast/internal/lock/domain"
)

func TestMapLockToResponse(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lock := &lockDomain.ProcessingLock{
		LockID:     "SKU-1",
		Holder:     "worker-1",
		Token:      uuid.New(),
		AcquiredAt: now.Add(-time.Hour),
		ExpiresAt:  now.Add(-time.Minute),
	}

	response := MapLockToResponse(lock, now)
	assert.Equal(t, "SKU-1", response.RecordID)
	assert.True(t, response.Expired)

	data, err := json.Marshal(response)
	require.NoError(t, err)
	assert.NotContains(t, string(data), lock.Token.String())
}

func TestMapList(t *testing.T) {
	empty := MapList([]*ledgerDomain.IdempotencyEntry(nil), MapLedgerEntryToResponse)
	data, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[]}`, string(data))

	events := []*auditDomain.Event{{
		ID:        uuid.New(),
		RunID:     uuid.New(),
		Level:     auditDomain.LevelSkip,
		Category:  auditDomain.CategoryLock,
		RecordID:  "SKU-1",
		Message:   "record locked by another execution",
		Signature: []byte{1, 2, 3},
	}}
	list := MapList(events, MapAuditEventToResponse)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "SKIP", list.Data[0].Level)
	assert.True(t, list.Data[0].Signed)
}
