package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"go.uber.org/zap"

	"receipt-vault/internal/dto"
	"receipt-vault/internal/repository"
	"receipt-vault/internal/service"
	"receipt-vault/internal/storage"
	"receipt-vault/pkg/config"
	"receipt-vault/pkg/logger"
	"receipt-vault/pkg/postgres"
)

// Exit codes: 0 success, 1 not found or internal failure,
// 2 bad input or missing confirmation.
const (
	exitOK       = 0
	exitNotFound = 1
	exitUsage    = 2
)

type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	receipts *service.ReceiptService
	queries  *service.QueryService
	repo     *repository.ReceiptRepository
}

func newApp(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := logger.Init(cfg.Logger.Level); err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	appLogger := logger.Get()

	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	store, err := storage.NewLocalStorage(cfg.Storage.Root)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("initializing image storage: %w", err)
	}

	var extractor service.TextExtractor
	var closeLLM func()
	if cfg.OCR.Provider == "gigachat" {
		llmService, err := service.NewLLMService(&cfg.GigaChat, appLogger)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("initializing LLM service: %w", err)
		}
		extractor = llmService
		closeLLM = llmService.Close
	}

	repo := repository.NewReceiptRepository(db, appLogger)
	ocrService := service.NewOCRService(&cfg.OCR, extractor, appLogger)
	extractService := service.NewExtractService(appLogger)
	receiptService := service.NewReceiptService(repo, store, extractService, ocrService, &cfg.Storage, appLogger)
	queryService := service.NewQueryService(receiptService, appLogger)

	cleanup := func() {
		if closeLLM != nil {
			closeLLM()
		}
		db.Close()
		logger.Sync()
	}
	return &app{
		cfg:      cfg,
		logger:   appLogger,
		receipts: receiptService,
		queries:  queryService,
		repo:     repo,
	}, cleanup, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// optStr treats an empty flag value as unset.
func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: total %q is not a number", service.ErrInvalid, s)
	}
	return &f, nil
}

func withApp(ctx context.Context, fn func(context.Context, *app) error) error {
	a, cleanup, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(ctx, a)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:]))
}

func run(ctx context.Context, args []string) int {
	rootFlags := ff.NewFlagSet("receiptctl")

	initCmd := &ff.Command{
		Name:      "init",
		Usage:     "receiptctl init",
		ShortHelp: "Create the database schema",
		Flags:     ff.NewFlagSet("init").SetParent(rootFlags),
		Exec: func(ctx context.Context, _ []string) error {
			return withApp(ctx, func(ctx context.Context, a *app) error {
				if err := a.repo.Init(ctx); err != nil {
					return err
				}
				return printJSON(map[string]any{"ok": true, "message": "database initialized"})
			})
		},
	}

	addFlags := ff.NewFlagSet("add").SetParent(rootFlags)
	var (
		addImage    = addFlags.StringLong("image", "", "Path to the receipt image (required)")
		addText     = addFlags.StringLong("text", "", "Receipt text, skips OCR")
		addVendor   = addFlags.StringLong("vendor", "", "Vendor override")
		addDate     = addFlags.StringLong("date", "", "Receipt date override (YYYY-MM-DD)")
		addTotal    = addFlags.StringLong("total", "", "Total override")
		addCurrency = addFlags.StringLong("currency", "", "Currency code override")
		addCategory = addFlags.StringLong("category", "", "Category override")
		addItems    = addFlags.StringLong("items-json", "", "Line items as a JSON array")
	)
	addCmd := &ff.Command{
		Name:      "add",
		Usage:     "receiptctl add --image <path> [flags]",
		ShortHelp: "Ingest a receipt image",
		Flags:     addFlags,
		Exec: func(ctx context.Context, _ []string) error {
			if *addImage == "" {
				return fmt.Errorf("%w: --image is required", service.ErrInvalid)
			}
			total, err := optFloat(*addTotal)
			if err != nil {
				return err
			}
			return withApp(ctx, func(ctx context.Context, a *app) error {
				res, err := a.receipts.Ingest(ctx, service.IngestInput{
					ImagePath: *addImage,
					Text:      optStr(*addText),
					Vendor:    optStr(*addVendor),
					Date:      optStr(*addDate),
					Total:     total,
					Currency:  optStr(*addCurrency),
					Category:  optStr(*addCategory),
					ItemsJSON: optStr(*addItems),
				})
				if err != nil {
					return err
				}
				return printJSON(res)
			})
		},
	}

	searchFlags := ff.NewFlagSet("search").SetParent(rootFlags)
	var (
		searchQ     = searchFlags.StringLong("q", "", "Substring over vendor, category, text and items")
		searchItem  = searchFlags.StringLong("item", "", "Line item keyword")
		searchLimit = searchFlags.IntLong("limit", 20, "Max rows")
	)
	searchCmd := &ff.Command{
		Name:      "search",
		Usage:     "receiptctl search [--q <text>] [--item <name>]",
		ShortHelp: "Search stored receipts",
		Flags:     searchFlags,
		Exec: func(ctx context.Context, _ []string) error {
			return withApp(ctx, func(ctx context.Context, a *app) error {
				recs, err := a.receipts.Search(ctx, *searchQ, *searchItem, *searchLimit)
				if err != nil {
					return err
				}
				return printJSON(dto.NewReceiptResponses(recs))
			})
		},
	}

	showFlags := ff.NewFlagSet("show").SetParent(rootFlags)
	showID := showFlags.IntLong("id", 0, "Receipt id (required)")
	showCmd := &ff.Command{
		Name:      "show",
		Usage:     "receiptctl show --id <id>",
		ShortHelp: "Fetch one receipt",
		Flags:     showFlags,
		Exec: func(ctx context.Context, _ []string) error {
			if *showID <= 0 {
				return fmt.Errorf("%w: --id is required", service.ErrInvalid)
			}
			return withApp(ctx, func(ctx context.Context, a *app) error {
				rec, err := a.receipts.Get(ctx, int64(*showID))
				if err != nil {
					return err
				}
				return printJSON(dto.NewReceiptResponse(rec))
			})
		},
	}

	summaryFlags := ff.NewFlagSet("summary").SetParent(rootFlags)
	var (
		summaryMonth  = summaryFlags.StringLong("month", "", "Month (YYYY-MM), defaults to the current one")
		summaryVendor = summaryFlags.IntLong("vendor-limit", 10, "Top vendors to include")
	)
	summaryCmd := &ff.Command{
		Name:      "summary",
		Usage:     "receiptctl summary [--month YYYY-MM]",
		ShortHelp: "Monthly totals by category and vendor",
		Flags:     summaryFlags,
		Exec: func(ctx context.Context, _ []string) error {
			return withApp(ctx, func(ctx context.Context, a *app) error {
				res, err := a.receipts.Summary(ctx, *summaryMonth, *summaryVendor)
				if err != nil {
					return err
				}
				return printJSON(res)
			})
		},
	}

	listFlags := ff.NewFlagSet("list").SetParent(rootFlags)
	var (
		listMonth    = listFlags.StringLong("month", "", "Month filter (YYYY-MM or bare month number)")
		listCategory = listFlags.StringLong("category", "", "Category filter")
		listLimit    = listFlags.IntLong("limit", 20, "Max rows")
	)
	listCmd := &ff.Command{
		Name:      "list",
		Usage:     "receiptctl list [--month <m>] [--category <c>]",
		ShortHelp: "List receipts by month and category",
		Flags:     listFlags,
		Exec: func(ctx context.Context, _ []string) error {
			return withApp(ctx, func(ctx context.Context, a *app) error {
				recs, err := a.receipts.List(ctx, *listMonth, *listCategory, *listLimit)
				if err != nil {
					return err
				}
				return printJSON(dto.NewReceiptResponses(recs))
			})
		},
	}

	nlpFlags := ff.NewFlagSet("nlp").SetParent(rootFlags)
	var (
		nlpText  = nlpFlags.StringLong("text", "", "Query text (required)")
		nlpLimit = nlpFlags.IntLong("limit", 20, "Max rows")
	)
	nlpCmd := &ff.Command{
		Name:      "nlp",
		Usage:     "receiptctl nlp --text <query>",
		ShortHelp: "Dispatch a natural-language trigger query",
		Flags:     nlpFlags,
		Exec: func(ctx context.Context, _ []string) error {
			return withApp(ctx, func(ctx context.Context, a *app) error {
				res, err := a.queries.Dispatch(ctx, *nlpText, *nlpLimit)
				if err != nil {
					return err
				}
				return printJSON(res)
			})
		},
	}

	updateFlags := ff.NewFlagSet("update").SetParent(rootFlags)
	var (
		updateID       = updateFlags.IntLong("id", 0, "Receipt id (required)")
		updateVendor   = updateFlags.StringLong("vendor", "", "New vendor")
		updateDate     = updateFlags.StringLong("date", "", "New date (YYYY-MM-DD)")
		updateTotal    = updateFlags.StringLong("total", "", "New total")
		updateCurrency = updateFlags.StringLong("currency", "", "New currency code")
		updateCategory = updateFlags.StringLong("category", "", "New category")
		updateText     = updateFlags.StringLong("text", "", "New receipt text")
		updateItems    = updateFlags.StringLong("items-json", "", "New line items as a JSON array")
	)
	updateCmd := &ff.Command{
		Name:      "update",
		Usage:     "receiptctl update --id <id> [flags]",
		ShortHelp: "Update fields on a stored receipt",
		Flags:     updateFlags,
		Exec: func(ctx context.Context, _ []string) error {
			if *updateID <= 0 {
				return fmt.Errorf("%w: --id is required", service.ErrInvalid)
			}
			total, err := optFloat(*updateTotal)
			if err != nil {
				return err
			}
			return withApp(ctx, func(ctx context.Context, a *app) error {
				fields, err := a.receipts.Update(ctx, int64(*updateID), service.UpdateInput{
					Vendor:    optStr(*updateVendor),
					Date:      optStr(*updateDate),
					Total:     total,
					Currency:  optStr(*updateCurrency),
					Category:  optStr(*updateCategory),
					Text:      optStr(*updateText),
					ItemsJSON: optStr(*updateItems),
				})
				if err != nil {
					return err
				}
				return printJSON(map[string]any{"ok": true, "updated": fields})
			})
		},
	}

	deleteFlags := ff.NewFlagSet("delete").SetParent(rootFlags)
	var (
		deleteID    = deleteFlags.IntLong("id", 0, "Receipt id (required)")
		deleteYes   = deleteFlags.BoolLong("yes", "Confirm the deletion")
		deleteImage = deleteFlags.BoolLong("delete-image", "Also delete the stored image")
	)
	deleteCmd := &ff.Command{
		Name:      "delete",
		Usage:     "receiptctl delete --id <id> --yes",
		ShortHelp: "Delete a receipt, confirmation required",
		Flags:     deleteFlags,
		Exec: func(ctx context.Context, _ []string) error {
			if *deleteID <= 0 {
				return fmt.Errorf("%w: --id is required", service.ErrInvalid)
			}
			return withApp(ctx, func(ctx context.Context, a *app) error {
				if err := a.receipts.Delete(ctx, int64(*deleteID), *deleteYes, *deleteImage); err != nil {
					return err
				}
				return printJSON(map[string]any{"ok": true, "deleted": *deleteID})
			})
		},
	}

	handleCmd := &ff.Command{
		Name:      "handle",
		Usage:     "receiptctl handle < payload.json",
		ShortHelp: "Read one JSON payload from stdin and save a receipt",
		Flags:     ff.NewFlagSet("handle").SetParent(rootFlags),
		Exec: func(ctx context.Context, _ []string) error {
			return withApp(ctx, func(ctx context.Context, a *app) error {
				h := service.NewHandlerService(a.receipts, a.logger)
				return h.Handle(ctx, os.Stdin, os.Stdout)
			})
		},
	}

	root := &ff.Command{
		Name:      "receiptctl",
		Usage:     "receiptctl <subcommand> [flags]",
		ShortHelp: "Manage the receipt vault from the command line",
		Flags:     rootFlags,
		Subcommands: []*ff.Command{
			initCmd, addCmd, searchCmd, showCmd, summaryCmd,
			listCmd, nlpCmd, updateCmd, deleteCmd, handleCmd,
		},
		Exec: func(context.Context, []string) error {
			return ff.ErrHelp
		},
	}

	err := root.ParseAndRun(ctx, args, ff.WithEnvVarPrefix("RECEIPT_VAULT"))
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, ff.ErrHelp):
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(root))
		return exitUsage
	case errors.Is(err, service.ErrInvalid), errors.Is(err, service.ErrConfirmRequired):
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitUsage
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitNotFound
	}
}
