package sqlite

import (
	"fmt"
	"testing"

	"nailbook/cmd/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type captured struct {
	lines []string
}

func (c *captured) Printf(format string, args ...interface{}) {
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

func TestOpen_MissingRecordIsNotLogged(t *testing.T) {
	out := &captured{}
	db, err := open("file:"+uuid.NewString()+"?mode=memory&cache=shared", newLogger(out))
	require.NoError(t, err)

	var client entity.Client
	err = db.Where("email = ?", "nobody@example.com").First(&client).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, out.lines)

	err = db.Exec("SELECT * FROM no_such_table").Error
	assert.Error(t, err)
	assert.NotEmpty(t, out.lines)
}

func TestSeed_IsIdempotent(t *testing.T) {
	db, err := Init("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)

	require.NoError(t, Seed(db, 0))
	require.NoError(t, Seed(db, 0))

	var count int64
	require.NoError(t, db.Model(&entity.Service{}).Count(&count).Error)
	assert.Equal(t, int64(len(DefaultServices(0))), count)
}
