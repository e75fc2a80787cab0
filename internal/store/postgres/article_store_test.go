package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/atlaswire/newscrawler/internal/news"
)

func sampleArticle(url string) news.Article {
	published := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	return news.Article{
		Title:       "MASI en hausse de 1,2%",
		Description: "La bourse de Casablanca clôture dans le vert.",
		Content:     "Le marché actions a progressé mardi.",
		Source:      "Boursenews",
		SourceURL:   url,
		ImageURL:    "https://cdn.boursenews.ma/img.jpg",
		PublishedAt: &published,
		Category:    "Boursenews",
		Tags:        []string{"MASI", "bourse"},
	}
}

func expectWrite(mock pgxmock.PgxPoolIface, pattern string, a news.Article) {
	mock.ExpectExec(pattern).
		WithArgs(
			a.Title, a.Description, a.Content, a.Source, a.SourceURL,
			a.ImageURL, a.PublishedAt, a.Category, a.Tags,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
}

func TestUpsertWritesEveryRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock, "articles")
	require.NoError(t, err)

	a := sampleArticle("https://www.boursenews.ma/article/a")
	b := sampleArticle("https://www.boursenews.ma/article/b")
	expectWrite(mock, "INSERT INTO articles", a)
	expectWrite(mock, "INSERT INTO articles", b)

	n, err := store.Upsert(context.Background(), []news.Article{a, b})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertStopsOnFirstFailure(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock, "articles")
	require.NoError(t, err)

	a := sampleArticle("https://www.boursenews.ma/article/a")
	b := sampleArticle("https://www.boursenews.ma/article/b")
	expectWrite(mock, "INSERT INTO articles", a)
	mock.ExpectExec("INSERT INTO articles").
		WithArgs(
			b.Title, b.Description, b.Content, b.Source, b.SourceURL,
			b.ImageURL, b.PublishedAt, b.Category, b.Tags,
		).
		WillReturnError(errors.New("connection lost"))

	n, err := store.Upsert(context.Background(), []news.Article{a, b})
	require.Error(t, err)
	require.Equal(t, 1, n)
}

func TestInsertRejectsMissingSourceURL(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock, "articles")
	require.NoError(t, err)

	_, err = store.Insert(context.Background(), []news.Article{{Title: "sans url"}})
	require.Error(t, err)
}

func TestDeleteByURLs(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock, "articles")
	require.NoError(t, err)

	urls := []string{"https://x.ma/a", "https://x.ma/b"}
	mock.ExpectExec("DELETE FROM articles").
		WithArgs(urls).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	require.NoError(t, store.DeleteByURLs(context.Background(), urls))
	require.NoError(t, store.DeleteByURLs(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{})
	require.ErrorIs(t, err, news.ErrMissingDSN)
}

func TestNewWithPoolValidatesTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewWithPool(mock, `articles; drop table users`)
	require.Error(t, err)
}
