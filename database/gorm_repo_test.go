package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rpupo63/portfolio-blog-backend/models"
)

type capturedStatement struct {
	sql  string
	vars []interface{}
}

// dryRunGorm builds SQL without a server and records every UPDATE it renders.
func dryRunGorm(t *testing.T) (*gorm.DB, *[]capturedStatement) {
	t.Helper()

	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=blog dbname=blog sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	var captured []capturedStatement
	err = db.Callback().Update().After("gorm:update").Register("test:capture_update", func(tx *gorm.DB) {
		captured = append(captured, capturedStatement{sql: tx.Statement.SQL.String(), vars: tx.Statement.Vars})
	})
	require.NoError(t, err)

	return db, &captured
}

func TestUserRepo_OTPConsumptionIsConditional(t *testing.T) {
	db, captured := dryRunGorm(t)
	repo := NewUserRepo(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// a dry run affects no rows, which is what a replayed or expired code looks like
	assert.ErrorIs(t, repo.VerifyAccount(ctx, "u1", "123456", now), errs.ErrNotFound)
	assert.ErrorIs(t, repo.ResetPassword(ctx, "u1", "123456", "hash", now), errs.ErrNotFound)

	require.Len(t, *captured, 2)
	for _, stmt := range *captured {
		assert.Contains(t, stmt.sql, `UPDATE "users" SET`)
		assert.Contains(t, stmt.sql, "WHERE id = $")
		assert.Contains(t, stmt.sql, "AND verify_otp = $")
		assert.Contains(t, stmt.sql, "AND verify_otp_expire_at >= $")

		n := len(stmt.vars)
		require.GreaterOrEqual(t, n, 3)
		assert.Equal(t, []interface{}{"u1", "123456", now}, stmt.vars[n-3:])
	}

	verify := (*captured)[0].sql
	assert.Contains(t, verify, `"is_account_verified"=`)
	assert.Contains(t, verify, `"verify_otp"=`)
	assert.Contains(t, verify, `"verify_otp_expire_at"=`)
	assert.Contains(t, (*captured)[1].sql, `"password"=`)
}

func TestBlogPostRepo_UpdateWritesEditableColumnsOnly(t *testing.T) {
	db, captured := dryRunGorm(t)
	repo := NewBlogPostRepo(db)

	err := repo.Update(context.Background(), &models.BlogPost{ID: "p1", Title: "Hi", Likes: []string{"u1"}})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.Len(t, *captured, 1)
	sql := (*captured)[0].sql
	assert.Contains(t, sql, `UPDATE "blog_posts" SET`)
	assert.Contains(t, sql, `"title"=`)
	assert.Contains(t, sql, `"is_published"=`)
	assert.NotContains(t, sql, "author")
	assert.NotContains(t, sql, "created_at")
}
