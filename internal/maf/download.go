package maf

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DefaultDownloadURL is the Firebrowse MAF analyses endpoint.
const DefaultDownloadURL = "http://firebrowse.org/api/v1/Analyses/Mutation/MAF"

// downloadPageSize is the Firebrowse page size per request.
const downloadPageSize = 200

// Downloader fetches cohort MAF files from Firebrowse.
type Downloader struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewDownloader creates a downloader against the Firebrowse endpoint. An
// empty base URL falls back to DefaultDownloadURL.
func NewDownloader(baseURL string) *Downloader {
	if baseURL == "" {
		baseURL = DefaultDownloadURL
	}
	return &Downloader{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for download progress messages.
func (d *Downloader) SetLogger(l *zap.Logger) {
	d.logger = l
}

// Download fetches the MAF file for the given cohort into outFile,
// requesting TSV pages until the server returns an empty body. The pages
// are concatenated verbatim.
func (d *Downloader) Download(cohort, outFile string) (string, error) {
	f, err := os.Create(outFile)
	if err != nil {
		return "", fmt.Errorf("create %s MAF file: %w", cohort, err)
	}
	defer f.Close()

	d.logger.Info("downloading MAF file",
		zap.String("cohort", cohort),
		zap.String("file", outFile))

	for page := 1; ; page++ {
		body, err := d.fetchPage(cohort, page)
		if err != nil {
			return "", fmt.Errorf("download %s MAF page %d: %w", cohort, page, err)
		}
		if len(body) == 0 {
			break
		}
		if _, err := f.Write(body); err != nil {
			return "", fmt.Errorf("write %s MAF file: %w", cohort, err)
		}
		d.logger.Debug("downloaded MAF page",
			zap.String("cohort", cohort),
			zap.Int("page", page))
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s MAF file: %w", cohort, err)
	}
	d.logger.Info("MAF file downloaded", zap.String("cohort", cohort))
	return outFile, nil
}

func (d *Downloader) fetchPage(cohort string, page int) ([]byte, error) {
	params := url.Values{}
	params.Set("format", "tsv")
	params.Set("cohort", cohort)
	params.Set("page_size", strconv.Itoa(downloadPageSize))
	params.Set("page", strconv.Itoa(page))

	resp, err := d.httpClient.Get(d.baseURL + "?" + params.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}
