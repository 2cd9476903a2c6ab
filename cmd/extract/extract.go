package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/3lfar7/tripadvparser/collect"
	"github.com/3lfar7/tripadvparser/config"
	"github.com/3lfar7/tripadvparser/fetch"
	"github.com/3lfar7/tripadvparser/log"
	"github.com/3lfar7/tripadvparser/storage"
	"github.com/3lfar7/tripadvparser/storage/sqlstorage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ExtractCmd = &cobra.Command{
	Use:   "extract [flags] URL|FILE...",
	Short: "extract records from html pages.",
	Long: `extract runs the schema of the config file over the given pages.
All pages feed one session and produce one record, unless --each is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Context(), cmd.OutOrStdout(), args)
	},
}

var (
	configPath string
	logFile    string
	skipErrors bool
	each       bool
	table      string
	post       []string
	disable    []string
	workers    int
)

func init() {
	ExtractCmd.Flags().StringVarP(
		&configPath, "config", "c", "config.toml", "set config file")

	ExtractCmd.Flags().StringVar(
		&logFile, "log-file", "", "also write logs to this file")

	ExtractCmd.Flags().BoolVar(
		&skipErrors, "skip-errors", false, "log extraction errors and go on with the next page")

	ExtractCmd.Flags().BoolVar(
		&each, "each", false, "produce one record per page")

	ExtractCmd.Flags().StringVar(
		&table, "table", "", "storage table, overrides the config")

	ExtractCmd.Flags().StringArrayVar(
		&post, "post", nil, "send a form POST with key=value instead of GET")

	ExtractCmd.Flags().StringSliceVar(
		&disable, "disable", nil, "fields to skip")

	ExtractCmd.Flags().IntVar(
		&workers, "workers", 1, "pages extracted at once, only with --each")
}

func Run(ctx context.Context, out io.Writer, sources []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, closer, err := log.New(cfg.LogLevel, logFile)
	if err != nil {
		return err
	}
	defer closer.Close()
	defer logger.Sync()

	// set zap global logger
	zap.ReplaceGlobals(logger)

	if skipErrors {
		cfg.SkipErrors = true
	}
	if table != "" {
		cfg.Storage.Table = table
	}

	form, err := parseForm(post)
	if err != nil {
		return err
	}

	f, err := NewFetcher(cfg.Fetcher, logger)
	if err != nil {
		return err
	}

	s, err := NewStorage(cfg.Storage, logger)
	if err != nil {
		return err
	}

	r, err := NewRunner(cfg,
		WithFetcher(f),
		WithStorage(s),
		WithLogger(logger),
		WithOutput(out),
		WithEach(each),
		WithForm(form),
		WithDisabled(disable...),
		WithWorkers(workers),
	)
	if err != nil {
		return err
	}

	runErr := r.Run(ctx, sources)
	if c, ok := s.(io.Closer); ok {
		if err := c.Close(); err != nil && runErr == nil {
			runErr = err
		}
	} else if err := s.Flush(); err != nil && runErr == nil {
		runErr = err
	}

	return runErr
}

func parseForm(pairs []string) (url.Values, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	form := url.Values{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("post value %q is not key=value", p)
		}
		form.Add(k, v)
	}

	return form, nil
}

// NewFetcher builds the page fetcher from the [fetcher] section.
func NewFetcher(cfg config.FetcherConfig, logger *zap.Logger) (fetch.Fetcher, error) {
	opts := []fetch.Option{
		fetch.WithTimeout(time.Duration(cfg.Timeout) * time.Millisecond),
		fetch.WithCookie(cfg.Cookie),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithWaitTime(time.Duration(cfg.WaitTime) * time.Second),
		fetch.WithLogger(logger.Named("fetch")),
	}

	if len(cfg.Proxy) > 0 {
		logger.Sugar().Info("proxy list: ", cfg.Proxy)
		p, err := fetch.RoundRobinProxySwitcher(cfg.Proxy...)
		if err != nil {
			return nil, fmt.Errorf("proxy:%w", err)
		}
		opts = append(opts, fetch.WithProxy(p))
	}

	if len(cfg.Limits) > 0 {
		var limits []fetch.RateLimiter
		for _, lcfg := range cfg.Limits {
			// speed limiter
			l, err := fetch.NewLimiter(lcfg.EventCount, time.Duration(lcfg.EventDur)*time.Second, lcfg.Bucket)
			if err != nil {
				return nil, fmt.Errorf("limit %+v:%w", lcfg, err)
			}
			limits = append(limits, l)
		}
		opts = append(opts, fetch.WithLimiter(fetch.Multi(limits...)))
	}

	return fetch.New(opts...), nil
}

// NewStorage builds the record storage from the [storage] section.
func NewStorage(cfg config.StorageConfig, logger *zap.Logger) (storage.Storage, error) {
	switch cfg.Type {
	case "mysql":
		s, err := sqlstorage.New(
			sqlstorage.WithSQLURL(cfg.SQLURL),
			sqlstorage.WithLogger(logger.Named("sqlDB")),
			sqlstorage.WithBatchCount(cfg.BatchCount),
		)
		if err != nil {
			logger.Error("create sqlstorage failed", zap.Error(err))
			return nil, err
		}
		logger.Info("start mysql storage")
		return s, nil
	default:
		logger.Debug("start empty storage")
		return storage.Empty{}, nil
	}
}

// encode 输出一行JSON
func encode(w io.Writer, source string, r collect.Result) error {
	return json.NewEncoder(w).Encode(struct {
		URL  string         `json:"url"`
		Data collect.Result `json:"data"`
	}{source, r})
}
