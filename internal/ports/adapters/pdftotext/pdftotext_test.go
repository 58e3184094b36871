package pdftotext

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kearry/mca/internal/types"
)

func TestImagesFromFiles(t *testing.T) {
	t.Parallel()

	prefix := "/srv/generated/job1_page"
	files := []string{
		"/srv/generated/job1_page-002-001.png",
		"/srv/generated/job1_page-001-000.png",
		"/srv/generated/job1_page-002-000.png",
	}
	out := imagesFromFiles(prefix, files)
	require.Equal(t, []types.PageImage{
		{Path: "/srv/generated/job1_page-001-000.png", Page: 1},
		{Path: "/srv/generated/job1_page-002-000.png", Page: 2},
		{Path: "/srv/generated/job1_page-002-001.png", Page: 2},
	}, out)
}

func TestImagesFromFiles_SkipsMalformedNames(t *testing.T) {
	t.Parallel()

	prefix := "/srv/generated/job1_page"
	files := []string{
		"/srv/generated/job1_page-notanumber-000.png",
		"/srv/generated/job1_page-003.png",
		"/srv/generated/job1_page-000-000.png",
	}
	require.Empty(t, imagesFromFiles(prefix, files))
}
