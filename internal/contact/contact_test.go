package contact

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var messageColumns = []string{"id", "name", "email", "subject", "message", "status", "created_at"}

func TestRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("Create", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO contact_messages \(id, name, email, subject, message, status\)`).
			WithArgs("m1", "Jane", "jane@example.com", nil, "Hello", "open").
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

		m := &Message{ID: "m1", Name: "Jane", Email: "jane@example.com", Message: "Hello", Status: StatusOpen}
		require.NoError(t, repo.Create(ctx, m))
		assert.Equal(t, now, m.CreatedAt)
	})

	t.Run("List newest first", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM contact_messages ORDER BY created_at DESC`).
			WillReturnRows(sqlmock.NewRows(messageColumns).
				AddRow("m2", "Bob", "bob@example.com", "Quote", "Hi", "closed", now).
				AddRow("m1", "Jane", "jane@example.com", nil, "Hello", "open", now.Add(-time.Hour)))

		out, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, StatusClosed, out[0].Status)
		assert.Nil(t, out[1].Subject)
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE contact_messages SET status = \$1 WHERE id = \$2 RETURNING`).
			WithArgs("closed", "m1").
			WillReturnRows(sqlmock.NewRows(messageColumns).
				AddRow("m1", "Jane", "jane@example.com", nil, "Hello", "closed", now))

		m, err := repo.UpdateStatus(ctx, "m1", StatusClosed)
		require.NoError(t, err)
		assert.Equal(t, StatusClosed, m.Status)
	})

	t.Run("UpdateStatus not found", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE contact_messages`).
			WithArgs("open", "missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.UpdateStatus(ctx, "missing", StatusOpen)
		assert.ErrorIs(t, err, ErrMessageNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, msg *Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockRepository) List(ctx context.Context) ([]Message, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Message), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Message, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Message), args.Error(1)
}

func TestService_CreateMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("Opens message", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", ctx, mock.MatchedBy(func(m *Message) bool {
			return m.Status == StatusOpen && m.Email == "jane@example.com" && m.ID != ""
		})).Return(nil)

		m, err := NewService(repo).CreateMessage(ctx, CreateInput{Name: "Jane", Email: " Jane@Example.com ", Message: "Hi"})
		require.NoError(t, err)
		assert.Equal(t, StatusOpen, m.Status)
	})

	t.Run("Repository error", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", ctx, mock.Anything).Return(errors.New("db down"))

		_, err := NewService(repo).CreateMessage(ctx, CreateInput{Name: "Jane", Email: "j@e.com", Message: "Hi"})
		assert.Error(t, err)
	})
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("closed")
	assert.True(t, ok)
	assert.Equal(t, StatusClosed, s)

	_, ok = ParseStatus("archived")
	assert.False(t, ok)
}
