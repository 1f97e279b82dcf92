package archive

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/baohaus/expeditor/internal/models"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// orderRecord is the flattened parquet row for one archived order.
// Items are kept as a JSON blob; archive consumers only ever filter on
// the scalar columns.
type orderRecord struct {
	OrderID        string `parquet:"name=order_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	OrderNumber    string `parquet:"name=order_number, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CustomerName   string `parquet:"name=customer_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	ItemCount      int32  `parquet:"name=item_count, type=INT32"`
	ElapsedMinutes int32  `parquet:"name=elapsed_minutes, type=INT32"`
	OrderedAt      int64  `parquet:"name=ordered_at, type=INT64"`
	CompletedAt    int64  `parquet:"name=completed_at, type=INT64"`
	Items          string `parquet:"name=items, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// Archiver writes purged completed orders to date-partitioned parquet
// files, locally or to cloud storage.
type Archiver struct {
	basePath           string
	cloudWriterFactory CloudWriterFactory
	cloudBucketName    string
	now                func() time.Time
}

func New(cfg *models.Config) (*Archiver, error) {
	a := &Archiver{
		basePath: cfg.ArchivePath,
		now:      time.Now,
	}

	if cfg.ArchiveDestination != "" && cfg.ArchiveDestination != "local" {
		var factory CloudWriterFactory
		var err error

		switch cfg.CloudStorage.Provider {
		case "s3":
			factory, err = NewS3WriterFactory(cfg.CloudStorage.Region)
		default:
			return nil, fmt.Errorf("unsupported cloud storage provider: %s", cfg.CloudStorage.Provider)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
		}

		a.cloudWriterFactory = factory
		a.cloudBucketName = cfg.CloudStorage.BucketName
	}

	return a, nil
}

// Archive writes one parquet file holding the given completed orders.
// An empty slice is a no-op.
func (a *Archiver) Archive(orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	now := a.now()
	year, month, day := now.Date()
	partitionPath := fmt.Sprintf("year=%d/month=%02d/day=%02d", year, month, day)
	fileName := fmt.Sprintf("completed_%d.parquet", now.UnixNano())

	fw, err := a.openFile(partitionPath, fileName)
	if err != nil {
		return err
	}

	pw, err := writer.NewParquetWriter(fw, new(orderRecord), 4)
	if err != nil {
		fw.Close()
		return fmt.Errorf("failed to create ParquetWriter: %w", err)
	}

	for _, ord := range orders {
		items, err := json.Marshal(ord.Items)
		if err != nil {
			log.Printf("skipping archive of order %s: %v", ord.ID, err)
			continue
		}
		rec := orderRecord{
			OrderID:        ord.ID,
			OrderNumber:    ord.OrderNumber,
			CustomerName:   ord.CustomerName,
			ItemCount:      int32(ord.ItemCount()),
			ElapsedMinutes: int32(ord.ElapsedMinutes),
			OrderedAt:      ord.OrderedAt.Unix(),
			CompletedAt:    ord.CompletedAt.Unix(),
			Items:          string(items),
		}
		if err := pw.Write(rec); err != nil {
			pw.WriteStop()
			fw.Close()
			return fmt.Errorf("failed to write archive record: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("failed to finalize archive file: %w", err)
	}
	return fw.Close()
}

func (a *Archiver) openFile(partitionPath, fileName string) (source.ParquetFile, error) {
	if a.cloudWriterFactory != nil {
		objectPath := filepath.Join(a.basePath, partitionPath, fileName)
		cloudWriter, err := a.cloudWriterFactory.NewWriter(a.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		return newCloudParquetFile(cloudWriter), nil
	}

	fullPath := filepath.Join(a.basePath, partitionPath)
	if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
		return nil, err
	}
	fw, err := local.NewLocalFileWriter(filepath.Join(fullPath, fileName))
	if err != nil {
		return nil, fmt.Errorf("failed to create local file writer: %w", err)
	}
	return fw, nil
}
