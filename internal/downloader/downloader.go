// Package downloader performs the polite bulk download of subject media
// files: rate limited, retried on transient failure, with randomized
// sleeps between subjects so the media host is never hammered.
package downloader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/kingsdigitallab/zoonyper/internal/conf"
	"github.com/kingsdigitallab/zoonyper/internal/errors"
	"github.com/kingsdigitallab/zoonyper/internal/logging"
	"github.com/kingsdigitallab/zoonyper/internal/project"
)

const userAgent = "zoonyper"

// SubjectSource yields the subjects and media URLs to download. The
// project facade satisfies it.
type SubjectSource interface {
	WorkflowIDs() []int64
	WorkflowSubjects(workflowID int64) []int64
	SubjectURLs() map[int64][]string
}

// DownloadLog receives a record of every fetched file. Optional.
type DownloadLog interface {
	LogDownload(workflowID, subjectID int64, url, path string) error
}

// Downloader fetches subject media into a download directory.
type Downloader struct {
	client     *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
	sleepMin   time.Duration
	sleepMax   time.Duration
	maxRetries uint
	dir        string
	layout     project.DownloadLayout
	log        DownloadLog
	logger     *slog.Logger

	// rand source for the polite sleep; swapped out in tests
	sleepFn func(context.Context, time.Duration) error
}

// New builds a downloader from the download settings.
func New(settings *conf.DownloadSettings) *Downloader {
	rps := settings.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	timeout := time.Duration(settings.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	retries := settings.MaxRetries
	if retries <= 0 {
		retries = 1
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Downloader{
		client:     &http.Client{Transport: transport},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		timeout:    timeout,
		sleepMin:   time.Duration(settings.SleepMinSeconds) * time.Second,
		sleepMax:   time.Duration(settings.SleepMaxSeconds) * time.Second,
		maxRetries: uint(retries),
		dir:        settings.Dir,
		layout: project.DownloadLayout{
			ByWorkflow:  settings.OrganizeByWorkflow,
			BySubjectID: settings.OrganizeBySubjectID,
		},
		logger:  logging.ForService("downloader"),
		sleepFn: sleepContext,
	}
}

// SetDownloadLog attaches a download log receiver.
func (d *Downloader) SetDownloadLog(log DownloadLog) {
	d.log = log
}

// DownloadAll downloads the media of every workflow of the source.
func (d *Downloader) DownloadAll(ctx context.Context, src SubjectSource) error {
	for _, workflowID := range src.WorkflowIDs() {
		d.logger.Info("downloading workflow", "workflow_id", workflowID)
		if err := d.DownloadWorkflow(ctx, src, workflowID); err != nil {
			return err
		}
	}
	return nil
}

// DownloadWorkflow downloads every media URL of every subject attached to
// the workflow. Files already on disk are skipped; after every subject
// that needed at least one fetch the downloader sleeps a random polite
// interval.
func (d *Downloader) DownloadWorkflow(ctx context.Context, src SubjectSource, workflowID int64) error {
	urls := src.SubjectURLs()
	subjects := src.WorkflowSubjects(workflowID)

	d.logger.Info("downloading subjects",
		"workflow_id", workflowID,
		"subjects", len(subjects))

	for _, subjectID := range subjects {
		fetched, err := d.downloadSubject(ctx, workflowID, subjectID, urls[subjectID])
		if err != nil {
			return err
		}
		if fetched && d.sleepMax > 0 {
			if err := d.sleepFn(ctx, d.politeInterval()); err != nil {
				return err
			}
		}
	}
	return nil
}

// downloadSubject fetches the subject's media files, reporting whether
// any network fetch actually happened.
func (d *Downloader) downloadSubject(ctx context.Context, workflowID, subjectID int64, urls []string) (bool, error) {
	dir := d.layout.SubjectDir(d.dir, workflowID, subjectID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, errors.Newf("failed to create subject directory: %w", err).
			Component("downloader").
			Category(errors.CategoryFileIO).
			FileContext(dir, 0).
			Build()
	}

	fetched := false
	for _, url := range urls {
		target := filepath.Join(dir, fileName(url))
		if _, err := os.Stat(target); err == nil {
			continue
		}
		if err := d.fetchFile(ctx, url, target); err != nil {
			return fetched, err
		}
		fetched = true
		if d.log != nil {
			if err := d.log.LogDownload(workflowID, subjectID, url, target); err != nil {
				d.logger.Warn("failed to record download", "url", url, "error", err)
			}
		}
	}
	return fetched, nil
}

// fetchFile downloads one URL to target, atomically via a temp file, with
// rate limiting and bounded retries on transient failure.
func (d *Downloader) fetchFile(ctx context.Context, url, target string) error {
	fetch := func() error {
		if err := d.limiter.Wait(ctx); err != nil {
			return retry.Unrecoverable(err)
		}

		reqCtx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return retry.Unrecoverable(err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := d.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			return d.writeAtomic(target, resp.Body)
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("media host returned status %d", resp.StatusCode)
		default:
			return retry.Unrecoverable(fmt.Errorf("media host returned status %d", resp.StatusCode))
		}
	}

	err := retry.Do(fetch,
		retry.Attempts(d.maxRetries),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return errors.Newf("failed to download media: %w", err).
			Component("downloader").
			Category(errors.CategoryDownload).
			NetworkContext(url, d.timeout).
			Build()
	}

	d.logger.Debug("downloaded media", "url", url, "file", target)
	return nil
}

// writeAtomic streams body to a uniquely named temp file in the target
// directory and renames it into place, so an interrupted download never
// leaves a half-written media file that a later run would skip.
func (d *Downloader) writeAtomic(target string, body io.Reader) error {
	tmp := filepath.Join(filepath.Dir(target), "."+uuid.NewString()+".part")

	f, err := os.Create(tmp)
	if err != nil {
		return retry.Unrecoverable(err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return retry.Unrecoverable(err)
	}
	return nil
}

// politeInterval picks a random sleep between the configured bounds.
func (d *Downloader) politeInterval() time.Duration {
	if d.sleepMax <= d.sleepMin {
		return d.sleepMin
	}
	return d.sleepMin + time.Duration(rand.Int63n(int64(d.sleepMax-d.sleepMin)))
}

// sleepContext sleeps for the interval unless the context ends first.
func sleepContext(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// fileName returns the final path segment of a media URL.
func fileName(url string) string {
	for i := len(url) - 1; i >= 0; i-- {
		if url[i] == '/' {
			return url[i+1:]
		}
	}
	return url
}
