package utils

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a no-op until InitLogger or InitElasticLogger runs.
var Logger = &AppLogger{Logger: zap.NewNop()}

type AppLogger struct {
	*zap.Logger
}

func InitLogger(serviceName string) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapLogger, err := config.Build()
	if err != nil {
		panic(err)
	}

	if serviceName != "" {
		zapLogger = zapLogger.With(zap.String("service", serviceName))
	}
	Logger = &AppLogger{Logger: zapLogger}
}

// InitElasticLogger tees every entry to stdout and to the index named by the
// "index" query parameter of elasticUrl.
func InitElasticLogger(elasticUrl, serviceName string) error {
	u, err := url.Parse(elasticUrl)
	if err != nil {
		return fmt.Errorf("invalid elastic url: %w", err)
	}

	indexName := u.Query().Get("index")
	if indexName == "" {
		indexName = "arcade-logs"
	}
	password, _ := u.User.Password()
	esCfg := elasticsearch.Config{
		Addresses: []string{u.Scheme + "://" + u.Host},
		Username:  u.User.Username(),
		Password:  password,
	}

	esClient, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return fmt.Errorf("failed to create elastic client: %w", err)
	}

	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(config.EncoderConfig)

	esWriter := &ElasticWriter{client: esClient, indexName: indexName}
	consoleCore := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stdout)), config.Level)
	elasticCore := zapcore.NewCore(encoder, zapcore.AddSync(esWriter), config.Level)

	zapLogger := zap.New(zapcore.NewTee(consoleCore, elasticCore))
	zapLogger = zapLogger.With(zap.String("service", serviceName))
	Logger = &AppLogger{Logger: zapLogger}
	return nil
}

// ElasticWriter implements zapcore.WriteSyncer on top of the index API.
type ElasticWriter struct {
	client    *elasticsearch.Client
	indexName string
}

func (ew *ElasticWriter) Write(p []byte) (n int, err error) {
	res, err := ew.client.Index(
		ew.indexName,
		strings.NewReader(string(p)),
		ew.client.Index.WithContext(context.Background()),
		ew.client.Index.WithDocumentID(strconv.FormatInt(time.Now().UnixNano(), 10)),
	)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("elastic index failed: %s", res.Status())
	}

	return len(p), nil
}

func (ew *ElasticWriter) Sync() error {
	return nil
}
