package filestore

import (
	"context"
	"testing"

	"github.com/feedasfor-cyber/expense-management-app/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGCSStageNaming(t *testing.T) {
	g := NewGCS(nil, "expenses-bucket", "/uploads/")

	staged, err := g.Stage(context.Background(), "20251001_120000_report.csv", []byte("id\n1\n"))
	require.NoError(t, err)

	assert.Equal(t, "20251001_120000_report.csv", staged.Name())
	assert.Regexp(t, `^gs://expenses-bucket/uploads/20251001_120000_report_[0-9a-f]{8}\.csv$`, staged.Location())

	object, err := g.objectFromLocation(staged.Location())
	require.NoError(t, err)
	assert.Regexp(t, `^uploads/20251001_120000_report_[0-9a-f]{8}\.csv$`, object)

	again, err := g.Stage(context.Background(), "20251001_120000_report.csv", []byte("id\n2\n"))
	require.NoError(t, err)
	assert.Equal(t, staged.Name(), again.Name())
	assert.NotEqual(t, staged.Location(), again.Location())

	// Nothing was written, so discarding needs no client.
	require.NoError(t, staged.Discard(context.Background()))
}

func TestGCSRejectsForeignLocation(t *testing.T) {
	g := NewGCS(nil, "expenses-bucket", "")

	_, err := g.objectFromLocation("gs://other-bucket/a.csv")
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))

	_, err = g.objectFromLocation("/var/uploads/a.csv")
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}
