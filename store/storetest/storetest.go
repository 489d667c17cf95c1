// Package storetest holds the behaviour every store.ReportStore must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahmoud-mohsen97/Chat-Agents/store"
)

// NewReport returns a fully populated report created at the given offset
// from a fixed base time.
func NewReport(id string, offset time.Duration) *store.Report {
	base := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	return &store.Report{
		ID:          id,
		Query:       "state of fusion energy research in 2024",
		Title:       "State Of Fusion Energy Research In 2024",
		Markdown:    "## Overview\n\nFusion.\n",
		Persona:     "You are an energy researcher.",
		Queries:     []string{"a", "b", "c", "d"},
		WordCount:   3,
		CharCount:   22,
		ResultCount: 7,
		CreatedAt:   base.Add(offset),
	}
}

// Run exercises s, which must be empty.
func Run(t *testing.T, s store.ReportStore) {
	t.Helper()
	ctx := context.Background()

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	older := NewReport("report-older", 0)
	newer := NewReport("report-newer", time.Hour)
	require.NoError(t, s.Save(ctx, older))
	require.NoError(t, s.Save(ctx, newer))

	t.Run("load round trips", func(t *testing.T) {
		got, err := s.Load(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, older.ID, got.ID)
		assert.Equal(t, older.Query, got.Query)
		assert.Equal(t, older.Markdown, got.Markdown)
		assert.Equal(t, older.Persona, got.Persona)
		assert.Equal(t, older.Queries, got.Queries)
		assert.Equal(t, older.WordCount, got.WordCount)
		assert.Equal(t, older.ResultCount, got.ResultCount)
		assert.True(t, older.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("save is write once", func(t *testing.T) {
		dup := NewReport(older.ID, 2*time.Hour)
		dup.Markdown = "overwritten"
		assert.ErrorIs(t, s.Save(ctx, dup), store.ErrExists)

		got, err := s.Load(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, older.Markdown, got.Markdown)
	})

	t.Run("list is newest first", func(t *testing.T) {
		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, newer.ID, list[0].ID)
		assert.Equal(t, older.ID, list[1].ID)
	})

	t.Run("missing report", func(t *testing.T) {
		_, err := s.Load(ctx, "nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, "nope"), store.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, older.ID))
		_, err := s.Load(ctx, older.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, newer.ID, list[0].ID)
	})
}
