package sink

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fgo-harvest/internal/model"
)

func TestPostgresUpsertEnsuresTableOnce(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "servants"`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`INSERT INTO "servants"`).
		WithArgs("2", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO "servants"`).
		WithArgs("16", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectClose()

	p := NewPostgres(mock)
	res := ImportServants(context.Background(), p, []model.CleanServant{
		{ServantID: 2, Name: "Altria Pendragon"},
		{ServantID: 16, Name: "Arash"},
	})
	assert.Equal(t, ImportResult{Succeeded: 2}, res)

	require.NoError(t, p.Close(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertRejectsBadCollection(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := NewPostgres(mock)
	err = p.Upsert(context.Background(), "Servants;", map[string]any{"servantId": 1}, struct{}{})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
