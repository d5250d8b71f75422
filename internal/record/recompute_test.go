package record

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// The status pass must never assign updated_at.
var noTimestampMatcher = sqlmock.QueryMatcherFunc(func(expected, actual string) error {
	if strings.Contains(actual, `"updated_at"=`) || strings.Contains(actual, "updated_at=") {
		return fmt.Errorf("statement assigns updated_at: %s", actual)
	}
	return sqlmock.QueryMatcherRegexp.Match(expected, actual)
})

func TestRecomputeActiveIsASingleColumnWrite(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(noTimestampMatcher))
	require.NoError(t, err)
	defer sqlDB.Close()

	conn, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "widgets" SET "active"=CASE WHEN created_at = updated_at THEN true ELSE false END WHERE id = $1`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT active FROM "widgets" WHERE id = $1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"active"}).AddRow(false))

	w := &widget{}
	w.ID = 7
	active, err := recomputeActive(conn, w)
	require.NoError(t, err)
	assert.False(t, active)
	assert.NoError(t, mock.ExpectationsWereMet())
}
