package database

import (
	"testing"

	modelspkg "warden/internal/models"

	"github.com/stretchr/testify/require"
)

func TestPersistentModels_IncludesModerationLedgers(t *testing.T) {
	var hasReport, hasPenalty, hasTrust bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *modelspkg.Report:
			hasReport = true
		case *modelspkg.Penalty:
			hasPenalty = true
		case *modelspkg.TrustStanding:
			hasTrust = true
		}
	}
	require.True(t, hasReport, "PersistentModels should include Report")
	require.True(t, hasPenalty, "PersistentModels should include Penalty")
	require.True(t, hasTrust, "PersistentModels should include TrustStanding")
}
