package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"corpanalyst/cmd/internal/config"
	"corpanalyst/cmd/internal/domain/entity"
	"corpanalyst/cmd/internal/domain/policy"
	"corpanalyst/cmd/internal/infrastructure/secapi"
	"corpanalyst/cmd/internal/metrics"
	"corpanalyst/cmd/internal/utils/connerr"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

const (
	filingConnector     = "filing"
	filingTextConnector = "filing_text"

	// unknownTicker names the archive folder for filings fetched without a ticker.
	unknownTicker = "unknown"
)

type FilingRepository interface {
	FindLatestByTicker(ctx context.Context, ticker string) (*entity.Filing, error)
	FindByURL(ctx context.Context, url string) (*entity.Filing, error)
	Upsert(ctx context.Context, filing *entity.Filing) error
}

type FilingProvider interface {
	SearchLatest(ctx context.Context, ticker, formType string) (*secapi.SearchResult, error)
	Download(ctx context.Context, url string, dst io.Writer) (int64, error)
}

type TextExtractor interface {
	ExtractFile(path string) (string, error)
}

type FilingArchive interface {
	UploadFile(ctx context.Context, body io.ReadSeeker, filename string) (string, error)
}

// FilingLink is the most recent filing known for a ticker.
type FilingLink struct {
	Ticker     string
	URL        string
	FilingDate *time.Time
	FromCache  bool
}

type FilingService struct {
	FilingRepo FilingRepository
	SEC        FilingProvider
	Extractor  TextExtractor
	// Archive is optional; downloaded PDFs are kept only when it is set.
	Archive FilingArchive

	Enabled  bool
	FormType string
	Policy   *policy.FreshnessPolicy
	Now      func() time.Time
}

func NewFilingService(repo FilingRepository, sec FilingProvider, extractor TextExtractor, archive FilingArchive, cfg config.SEC) *FilingService {
	return &FilingService{
		FilingRepo: repo,
		SEC:        sec,
		Extractor:  extractor,
		Archive:    archive,
		Enabled:    cfg.Enabled,
		FormType:   cfg.FormType,
		Policy:     policy.NewFreshnessPolicy(policy.FilingLinkTTLDays),
		Now:        time.Now,
	}
}

// ResolveLink returns the latest filing link for ticker, from the cache while
// the cached filing date is fresh and from the search API otherwise. Links
// found remotely are not cached until their text is fetched.
func (s *FilingService) ResolveLink(ctx context.Context, ticker string) (*FilingLink, error) {
	link, outcome, err := s.resolve(ctx, ticker)
	if outcome != "" {
		metrics.RecordLookup(filingConnector, outcome)
	}
	return link, err
}

// resolve is ResolveLink without metrics. It reports the lookup outcome, or ""
// when a cache-store failure leaves no outcome to record.
func (s *FilingService) resolve(ctx context.Context, ticker string) (*FilingLink, string, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return nil, metrics.OutcomeAbsent, connerr.New(connerr.KindInvalidInput, "ticker is required")
	}

	cached, err := s.FilingRepo.FindLatestByTicker(ctx, ticker)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read filing cache for %s: %w", ticker, err)
	}

	if cached != nil {
		link := &FilingLink{Ticker: ticker, URL: cached.URL, FilingDate: cached.DateOfReport, FromCache: true}
		if s.Policy.Evaluate(s.Now(), cached.DateOfReport) == policy.Fresh {
			return link, metrics.OutcomeCacheFresh, nil
		}

		if !s.Enabled {
			log.Infof("Filing link for %s is stale but SEC API calls are disabled, serving cached link", ticker)
			return link, metrics.OutcomeStaleServed, nil
		}
		log.Infof("Filing link for %s is older than %d days, searching again", ticker, s.Policy.TTLDays)
	}

	if !s.Enabled {
		return nil, metrics.OutcomeAbsent, connerr.New(connerr.KindDisabled, "no cached filing for %s and SEC API calls are disabled", ticker)
	}

	link, err := s.search(ctx, ticker)
	if err != nil {
		return nil, failureOutcome(err), err
	}
	return link, metrics.OutcomeRefreshed, nil
}

func (s *FilingService) search(ctx context.Context, ticker string) (*FilingLink, error) {
	res, err := s.SEC.SearchLatest(ctx, ticker, s.FormType)
	if err != nil {
		log.Errorf("SEC search for %s failed: %v", ticker, err)
		return nil, connerr.Wrap(connerr.KindNetwork, err, "sec search for %s failed", ticker)
	}

	switch res.Status {
	case secapi.SearchFound:
		return &FilingLink{Ticker: ticker, URL: res.URL, FilingDate: res.FiledAt}, nil
	case secapi.SearchEmpty:
		return nil, connerr.New(connerr.KindNotFound, "no %s filings found for %s", s.FormType, ticker)
	default:
		log.Warnf("SEC search for %s returned a malformed response: %s", ticker, res.Reason)
		return nil, connerr.New(connerr.KindMalformed, "malformed sec search response for %s: %s", ticker, res.Reason)
	}
}

// FetchText returns the plain text of the filing at url. Text is cached by
// URL with no expiry.
func (s *FilingService) FetchText(ctx context.Context, url, ticker string) (string, error) {
	url = strings.TrimSpace(url)
	ticker = NormalizeTicker(ticker)
	if url == "" {
		return "", connerr.New(connerr.KindInvalidInput, "filing url is required")
	}

	cached, err := s.FilingRepo.FindByURL(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to read filing cache for %s: %w", url, err)
	}

	if cached != nil {
		metrics.RecordLookup(filingTextConnector, metrics.OutcomeCacheFresh)
		return cached.TextReport, nil
	}

	if !s.Enabled {
		metrics.RecordLookup(filingTextConnector, metrics.OutcomeAbsent)
		return "", connerr.New(connerr.KindDisabled, "filing %s is not cached and SEC API calls are disabled", url)
	}

	text, err := s.download(ctx, url, ticker)
	if err != nil {
		metrics.RecordLookup(filingTextConnector, failureOutcome(err))
		return "", err
	}

	filingDate, err := s.filingDate(ctx, url, ticker)
	if err != nil {
		return "", err
	}

	err = s.FilingRepo.Upsert(ctx, &entity.Filing{
		URL:            url,
		Ticker:         ticker,
		DateOfReport:   filingDate,
		TextReport:     text,
		DateOfDownload: Today(s.Now()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to save filing %s: %w", url, err)
	}

	log.Infof("Filing %s for %s saved to the cache", url, ticker)
	metrics.RecordLookup(filingTextConnector, metrics.OutcomeRefreshed)
	return text, nil
}

// download fetches the PDF into a private temp directory, extracts its text
// and removes the directory on every path.
func (s *FilingService) download(ctx context.Context, url, ticker string) (string, error) {
	dir, err := os.MkdirTemp("", "sec-filing-*")
	if err != nil {
		return "", connerr.Wrap(connerr.KindUnexpected, err, "failed to create temp dir")
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, uuid.NewString()+".pdf")
	f, err := os.Create(path)
	if err != nil {
		return "", connerr.Wrap(connerr.KindUnexpected, err, "failed to create temp file")
	}

	_, err = s.SEC.Download(ctx, url, f)
	closeErr := f.Close()
	if err != nil {
		if errors.Is(err, secapi.ErrUnexpectedContentType) {
			log.Warnf("Filing %s was not served as a PDF: %v", url, err)
			return "", connerr.Wrap(connerr.KindNotFound, err, "filing %s is not available as a pdf", url)
		}
		log.Errorf("Failed to download filing %s: %v", url, err)
		return "", connerr.Wrap(connerr.KindNetwork, err, "failed to download filing %s", url)
	}

	if closeErr != nil {
		return "", connerr.Wrap(connerr.KindUnexpected, closeErr, "failed to write filing %s", url)
	}

	text, err := s.Extractor.ExtractFile(path)
	if err != nil {
		log.Errorf("Failed to extract text from filing %s: %v", url, err)
		return "", connerr.Wrap(connerr.KindMalformed, err, "failed to extract text from filing %s", url)
	}

	s.archive(ctx, path, ticker)
	return text, nil
}

func (s *FilingService) archive(ctx context.Context, path, ticker string) {
	if s.Archive == nil {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		log.Errorf("Failed to open filing for archiving: %v", err)
		return
	}
	defer f.Close()

	folder := ticker
	if folder == "" {
		folder = unknownTicker
	}

	key, err := s.Archive.UploadFile(ctx, f, folder+"/"+filepath.Base(path))
	if err != nil {
		log.Errorf("Failed to archive filing for %s: %v", ticker, err)
		return
	}
	log.Debugf("Archived filing for %s at %s", ticker, key)
}

// filingDate re-resolves the ticker's latest link and returns its date when it
// points at url. Any other outcome leaves the date unset; only cache-store
// failures are returned.
func (s *FilingService) filingDate(ctx context.Context, url, ticker string) (*time.Time, error) {
	if ticker == "" {
		return nil, nil
	}

	link, _, err := s.resolve(ctx, ticker)
	if err != nil {
		if connerr.IsConnectorError(err) {
			log.Warnf("Could not re-resolve the filing date for %s: %v", ticker, err)
			return nil, nil
		}
		return nil, err
	}

	if link.URL != url {
		log.Warnf("Latest filing for %s is %s, not %s; storing %s without a filing date", ticker, link.URL, url, url)
		return nil, nil
	}
	return link.FilingDate, nil
}

func failureOutcome(err error) string {
	if connerr.IsAbsent(err) {
		return metrics.OutcomeAbsent
	}
	return metrics.OutcomeError
}
