package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/mediahub/internal/client/models"
)

// List shows the first page of the user's media whose file name contains
// search. The search is remembered for Page.
func (a *App) List(ctx context.Context, search string) error {
	a.mu.Lock()
	a.search = search
	a.mu.Unlock()
	return a.showPage(ctx, search, 1)
}

// Page shows page n of the last listing.
func (a *App) Page(ctx context.Context, n int) error {
	a.mu.Lock()
	search := a.search
	a.mu.Unlock()
	return a.showPage(ctx, search, n)
}

// Refresh refetches the list from the server, then shows the first page of
// the last listing.
func (a *App) Refresh(ctx context.Context) error {
	if _, err := a.mediaService.Refresh(ctx); err != nil {
		return err
	}
	a.mu.Lock()
	search := a.search
	a.mu.Unlock()
	return a.showPage(ctx, search, 1)
}

func (a *App) showPage(ctx context.Context, search string, n int) error {
	p, err := a.mediaService.Browse(ctx, search, n)
	if err != nil {
		return err
	}
	printlnFn(formatPage(p))
	return nil
}

func formatPage(p models.MediaPage) string {
	if p.Total == 0 {
		if p.Query != "" {
			return fmt.Sprintf("No media matching %q", p.Query)
		}
		return "No media found"
	}

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tFILE\tTITLE\tUPDATED")
	for _, it := range p.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			it.ID, it.FileType, it.FileName, it.Title, humanize.Time(it.UpdatedAt))
	}
	_ = tw.Flush()
	fmt.Fprintf(&b, "Page %d/%d (%d items)", p.Page, p.TotalPages, p.Total)
	return b.String()
}

// Show prints one item.
func (a *App) Show(ctx context.Context, id string) error {
	it, err := a.mediaService.Get(ctx, id)
	if err != nil {
		return err
	}
	printlnFn(formatItem(it))
	return nil
}

func formatItem(it *models.MediaItem) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 1, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", it.ID)
	fmt.Fprintf(tw, "File:\t%s\n", it.FileName)
	fmt.Fprintf(tw, "Type:\t%s\n", it.FileType)
	if it.Title != "" {
		fmt.Fprintf(tw, "Title:\t%s\n", it.Title)
	}
	fmt.Fprintf(tw, "URL:\t%s\n", it.FileURL)
	fmt.Fprintf(tw, "Created:\t%s\n", it.CreatedAt.Format(time.DateTime))
	fmt.Fprintf(tw, "Updated:\t%s\n", it.UpdatedAt.Format(time.DateTime))
	_ = tw.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func (a *App) Upload(ctx context.Context, path, title string) error {
	it, err := a.mediaService.Upload(ctx, path, title)
	if err != nil {
		return err
	}
	printlnFn("Media uploaded successfully:", it.ID)
	return nil
}

func (a *App) Update(ctx context.Context, id, path string) error {
	it, err := a.mediaService.Update(ctx, id, path)
	if err != nil {
		return err
	}
	printlnFn("Media updated successfully:", it.ID)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.mediaService.Delete(ctx, id); err != nil {
		return err
	}
	printlnFn("Media deleted successfully")
	return nil
}

// Download saves the file of item id to dest, a file path or an existing
// directory.
func (a *App) Download(ctx context.Context, id, dest string) error {
	path, n, err := a.mediaService.Download(ctx, id, dest)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Saved %s (%s)", path, humanize.Bytes(uint64(n))))
	return nil
}

// Backup mirrors the library into the configured bucket.
func (a *App) Backup(ctx context.Context) error {
	report, err := a.mediaService.Backup(ctx, a.backup)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Backed up %d item(s)", len(report.Keys)))
	ids := make([]string, 0, len(report.Failed))
	for id := range report.Failed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		printlnFn(fmt.Sprintf("  failed %s: %v", id, report.Failed[id]))
	}
	return nil
}

// Stats prints the query cache counters.
func (a *App) Stats(ctx context.Context) error {
	families, err := a.metrics.Gather()
	if err != nil {
		return err
	}
	if len(families) == 0 {
		printlnFn("No statistics yet")
		return nil
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			printlnFn(fmt.Sprintf("%-40s %g", mf.GetName(), m.GetCounter().GetValue()))
		}
	}
	return nil
}
