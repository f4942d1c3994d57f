package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/corrlab/internal/market"
)

// CSVStore keeps one <ASSET>.csv per asset under baseDir with at least the
// columns date (YYYY-MM-DD) and close.
type CSVStore struct {
	baseDir string
}

var _ PriceSource = (*CSVStore)(nil)

func NewCSV(baseDir string) *CSVStore {
	return &CSVStore{baseDir: baseDir}
}

func (s *CSVStore) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *CSVStore) path(assetID string) string {
	return filepath.Join(s.baseDir, assetID+".csv")
}

func (s *CSVStore) Prices(ctx context.Context, assetID string) ([]market.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if assetID == "" || strings.ContainsAny(assetID, `/\`) {
		return nil, market.NotFound(assetID)
	}

	file, err := os.Open(s.path(assetID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, market.NotFound(assetID)
		}
		return nil, err
	}
	defer file.Close()

	prices, err := readPrices(file)
	if err != nil {
		return nil, &market.AssetError{AssetID: assetID, Wrapped: err}
	}
	return prices, nil
}

func readPrices(r io.Reader) ([]market.PricePoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return []market.PricePoint{}, nil
		}
		return nil, err
	}
	dateIdx, closeIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "date":
			dateIdx = i
		case "close":
			closeIdx = i
		}
	}
	if dateIdx < 0 || closeIdx < 0 {
		return nil, errors.New("csv header must contain date and close columns")
	}

	prices := make([]market.PricePoint, 0)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) <= dateIdx || len(record) <= closeIdx {
			continue
		}
		date, err := time.Parse(market.DateLayout, strings.TrimSpace(record[dateIdx]))
		if err != nil {
			continue
		}
		closePrice, err := strconv.ParseFloat(strings.TrimSpace(record[closeIdx]), 64)
		if err != nil {
			continue
		}
		prices = append(prices, market.PricePoint{Date: date, Close: closePrice})
	}

	sort.SliceStable(prices, func(i, j int) bool { return prices[i].Date.Before(prices[j].Date) })
	return prices, nil
}

// Save writes prices for assetID, replacing any existing file.
func (s *CSVStore) Save(assetID string, prices []market.PricePoint) error {
	if err := s.Init(); err != nil {
		return err
	}
	file, err := os.Create(s.path(assetID))
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"date", "close"}); err != nil {
		return err
	}
	for _, p := range prices {
		row := []string{p.Date.Format(market.DateLayout), strconv.FormatFloat(p.Close, 'f', -1, 64)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", assetID, err)
	}
	return nil
}

// List returns the ids of all assets with a CSV file, sorted.
func (s *CSVStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	ids := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".csv" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".csv"))
	}
	sort.Strings(ids)
	return ids, nil
}
