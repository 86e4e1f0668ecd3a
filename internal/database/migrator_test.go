package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidsmart-backend/internal/database"
)

func TestMigrations_Ordered(t *testing.T) {
	names, err := database.Migrations()
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, "001_initial_schema.sql", names[0])
	assert.Equal(t, "002_calculate_bid_scores.sql", names[1])
}
