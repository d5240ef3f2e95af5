// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve downloads the document behind each search result, or
// records the link when the result is not downloadable. Download failures
// never propagate: each one is classified and written to disk as a marker
// file so the reviewer can retrieve the document by hand.
package retrieve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/grey-lit-search/internal/httputil"
	"github.com/pdiddy/grey-lit-search/internal/logging"
	"github.com/pdiddy/grey-lit-search/internal/session"
	"github.com/pdiddy/grey-lit-search/pkg/types"
)

const (
	// LinkFile holds the link of a result that was not downloaded.
	LinkFile = "website_link.txt"

	// fallbackName is used when a link has no usable final path segment.
	fallbackName = "download"

	// maxNameLen keeps name plus the longest marker suffix under the 255
	// byte file name limit of common filesystems.
	maxNameLen = 200
	maxExtLen  = 16

	notFoundSuffix = ".404error.txt"
	timedOutSuffix = ".timedout.txt"
	failedSuffix   = ".failed.txt"

	notFoundMsg = "recieved 404 error when trying to download\n"
	timedOutMsg = "timed out when trying to download, please manually download using the link below\n"
	failedMsg   = "recieved an error when trying to download\n"
)

// Kind classifies what happened to a single result.
type Kind int

const (
	// Saved means the document was downloaded.
	Saved Kind = iota
	// NotFound means the server answered with an error status.
	NotFound
	// TimedOut means the request exceeded its deadline.
	TimedOut
	// Failed covers every other transport or local processing error.
	Failed
	// Linked means the result was not downloadable and its link was recorded.
	Linked
	// Canceled means the caller gave up on the download. Nothing is
	// written, since the remote side never failed.
	Canceled
)

func (k Kind) String() string {
	switch k {
	case Saved:
		return "saved"
	case NotFound:
		return "404"
	case TimedOut:
		return "timeout"
	case Failed:
		return "failed"
	case Linked:
		return "link"
	case Canceled:
		return "canceled"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the result of handling one search result. Path is the single
// artifact written for it: the document, a marker file or the link file.
type Outcome struct {
	Index int
	Link  string
	Kind  Kind
	Path  string

	// Err is the download error behind a NotFound, TimedOut or Failed
	// outcome, or the error that kept a marker file from being written.
	Err error
}

// Dispatcher retrieves results into a session directory.
type Dispatcher struct {
	client  *http.Client
	baseDir string
	ua      string
	log     logrus.FieldLogger
}

// New returns a Dispatcher writing under baseDir. When client is nil one is
// built from cfg (timeout defaults to 60s, redirects are followed).
func New(baseDir string, cfg types.RetrievalConfig, client *http.Client, log logrus.FieldLogger) *Dispatcher {
	if client == nil {
		client = httputil.NewClient(cfg.Timeout, cfg.MaxRedirects)
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = types.DefaultUserAgent
	}
	return &Dispatcher{
		client:  client,
		baseDir: baseDir,
		ua:      ua,
		log:     logging.OrDiscard(log),
	}
}

// Fetch downloads link into the directory for index. It makes one attempt
// and leaves exactly one artifact behind: the document on a 2xx response,
// otherwise a marker file whose suffix names the failure class. The one
// exception is a canceled ctx, which yields Canceled and no artifact.
func (d *Dispatcher) Fetch(ctx context.Context, index int, link string) Outcome {
	out := Outcome{Index: index, Link: link}
	log := d.log.WithFields(logrus.Fields{"index": session.FormatIndex(index), "link": link})

	name := FileName(link)
	dest := filepath.Join(session.ResultDir(d.baseDir, index), name)
	log.WithField("file", dest).Info("attempting download")

	err := d.download(ctx, index, link, dest)
	if err == nil {
		out.Kind = Saved
		out.Path = dest
		log.WithField("file", dest).Info("download saved")
		return out
	}

	out.Err = err
	if errors.Is(err, context.Canceled) {
		out.Kind = Canceled
		log.Info("download canceled")
		return out
	}

	var suffix, msg string
	var serr *httputil.StatusError
	switch {
	case errors.As(err, &serr):
		out.Kind, suffix, msg = NotFound, notFoundSuffix, notFoundMsg
		log.WithField("status", serr.StatusCode).Error("link does not exist")
	case httputil.IsTimeout(err):
		out.Kind, suffix, msg = TimedOut, timedOutSuffix, timedOutMsg
		log.WithError(err).Warn("download timed out")
	default:
		out.Kind, suffix, msg = Failed, failedSuffix, failedMsg
		log.WithError(err).Warn("download failed")
	}

	out.Path = dest + suffix
	if werr := writeMarker(d.baseDir, index, out.Path, msg+link); werr != nil {
		log.WithError(werr).Error("writing marker file")
		out.Err = fmt.Errorf("%w; writing marker: %v", err, werr)
	}
	return out
}

// RecordLink writes link verbatim to website_link.txt in the directory for
// index. Errors here mean the output tree is unusable and are returned.
func (d *Dispatcher) RecordLink(index int, link string) (Outcome, error) {
	dir, err := session.EnsureResultDir(d.baseDir, index)
	if err != nil {
		return Outcome{}, err
	}
	dest := filepath.Join(dir, LinkFile)
	d.log.WithFields(logrus.Fields{"index": session.FormatIndex(index), "file": dest}).Info("saving link")

	if err := os.WriteFile(dest, []byte(link), 0o644); err != nil {
		return Outcome{}, fmt.Errorf("writing link file %s: %w", dest, err)
	}
	return Outcome{Index: index, Link: link, Kind: Linked, Path: dest}, nil
}

// download fetches link to dest through a temporary file in the same
// directory, so dest is either absent or complete.
func (d *Dispatcher) download(ctx context.Context, index int, link, dest string) error {
	if _, err := session.EnsureResultDir(d.baseDir, index); err != nil {
		return err
	}

	resp, err := httputil.Get(ctx, d.client, link, d.ua)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// writeMarker creates the result directory again before writing, since the
// failure may have happened before it existed.
func writeMarker(baseDir string, index int, path, body string) error {
	if _, err := session.EnsureResultDir(baseDir, index); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(body), 0o644)
}

// FileName derives the local file name from the final path segment of
// link. Query strings and fragments are ignored. Links without a usable
// segment map to "download"; overlong names are cut to maxNameLen bytes.
func FileName(link string) string {
	p := link
	if u, err := url.Parse(link); err == nil {
		p = u.EscapedPath()
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	name := path.Base(strings.TrimRight(p, "/"))
	switch name {
	case "", ".", "/", "..":
		return fallbackName
	}
	if unescaped, err := url.PathUnescape(name); err == nil && unescaped != "" &&
		!strings.ContainsAny(unescaped, `/\`) && unescaped != "." && unescaped != ".." {
		name = unescaped
	}
	return truncateName(name)
}

// truncateName shortens name to maxNameLen bytes, keeping a short
// extension and never splitting a UTF-8 sequence.
func truncateName(name string) string {
	if len(name) <= maxNameLen {
		return name
	}
	ext := path.Ext(name)
	if len(ext) > maxExtLen {
		ext = ""
	}
	stem := strings.TrimSuffix(name, ext)
	n := maxNameLen - len(ext)
	for n > 0 && !utf8.RuneStart(stem[n]) {
		n--
	}
	return stem[:n] + ext
}
