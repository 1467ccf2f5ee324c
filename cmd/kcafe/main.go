// kcafe is the café backend. One binary, four modes:
//
//	kcafe --mode order-service --port 3000
//	kcafe --mode pos-service --port 3001
//	kcafe --mode tracking-service --port 3002
//	kcafe --mode notification-subscriber
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"knowledge-cafe/internal/app/order"
	"knowledge-cafe/internal/app/pos"
	"knowledge-cafe/internal/app/tracking"
	"knowledge-cafe/internal/cart"
	"knowledge-cafe/internal/checkout"
	"knowledge-cafe/internal/common/db"
	"knowledge-cafe/internal/common/mq"
	"knowledge-cafe/internal/config"
	"knowledge-cafe/internal/ledger"
	"knowledge-cafe/internal/lifecycle"
	"knowledge-cafe/internal/logger"
	"knowledge-cafe/internal/notify"
	"knowledge-cafe/internal/payment"
	"knowledge-cafe/internal/pricing"
	"knowledge-cafe/internal/queue"
	"knowledge-cafe/internal/store"
)

func main() {
	mode := flag.String("mode", "", "order-service | pos-service | tracking-service | notification-subscriber")
	port := flag.Int("port", 3000, "HTTP port for the service modes")
	cfgPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	if err := run(*mode, *port, *cfgPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(mode string, port int, cfgPath string) error {
	if cfgPath == "" {
		p, err := config.FindConfig()
		if err != nil {
			return fmt.Errorf("no config file found, pass --config")
		}
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	log := logger.New(mode)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", port)
	switch mode {
	case "order-service":
		return runOrderService(ctx, addr, cfg, log)
	case "pos-service":
		return runPOSService(ctx, addr, cfg, log)
	case "tracking-service":
		return runTrackingService(ctx, addr, cfg, log)
	case "notification-subscriber":
		return runNotificationSubscriber(ctx, cfg, log)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

// orderStore assembles the failover pair shared by every mode that touches
// orders: Postgres primary, local JSON-lines fallback.
func orderStore(ctx context.Context, cfg config.App, log *logger.Logger) (*store.Failover, *db.Conn, error) {
	conn, err := db.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	primary := store.NewPostgres(conn.Pool)
	fallback := store.NewLocal(cfg.FallbackPath)
	return store.NewFailover(primary, fallback, log), conn, nil
}

func cartManager(cfg config.App) *cart.Manager {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	fees := pricing.Fees{ToGo: cfg.Cafe.ToGoFee(), Deposit: cfg.Cafe.CupDeposit()}
	return cart.NewManager(cart.NewRedisStore(rdb, cfg.Redis.CartTTL()), fees)
}

func businessHours(cfg config.App) (checkout.Hours, error) {
	loc, err := cfg.Cafe.Location()
	if err != nil {
		return checkout.Hours{}, fmt.Errorf("resolve timezone: %w", err)
	}
	return checkout.Hours{
		Loc:     loc,
		Open:    cfg.Cafe.OpenHour,
		Close:   cfg.Cafe.CloseHour,
		MaxDays: cfg.Cafe.MaxScheduleDays,
	}, nil
}

func runOrderService(ctx context.Context, addr string, cfg config.App, log *logger.Logger) error {
	orders, conn, err := orderStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	mqc, err := mq.Dial(cfg.Rabbit.URL())
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	defer mqc.Close()
	if err := mqc.DeclareAll(); err != nil {
		return err
	}

	hours, err := businessHours(cfg)
	if err != nil {
		return err
	}

	carts := cartManager(cfg)
	customers := ledger.NewCustomers(conn.Pool)
	co := checkout.NewService(carts, orders, customers, mqc, hours, log)
	return order.Run(ctx, addr, carts, co, log)
}

func runPOSService(ctx context.Context, addr string, cfg config.App, log *logger.Logger) error {
	orders, conn, err := orderStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	mqc, err := mq.Dial(cfg.Rabbit.URL())
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	defer mqc.Close()
	if err := mqc.DeclareAll(); err != nil {
		return err
	}

	hours, err := businessHours(cfg)
	if err != nil {
		return err
	}

	carts := cartManager(cfg)
	customers := ledger.NewCustomers(conn.Pool)
	sales := ledger.NewSales(conn.Pool)
	co := checkout.NewService(carts, orders, customers, mqc, hours, log)
	lc := lifecycle.NewService(orders, sales, mqc, log)
	qs := queue.NewService(orders)

	var collector *payment.Collector
	if cfg.Payment.TerminalURL != "" {
		terminal := payment.NewHTTPTerminal(cfg.Payment.TerminalURL)
		collector = payment.NewCollector(terminal, orders, cfg.Payment.PollInterval(), cfg.Payment.PollTimeout(), log)
	}

	return pos.Run(ctx, addr, pos.Deps{
		Carts:     carts,
		Checkout:  co,
		Lifecycle: lc,
		Queue:     qs,
		Customers: customers,
		Sales:     sales,
		Collector: collector,
		Deposit:   cfg.Cafe.CupDeposit(),
		Log:       log,
	})
}

func runTrackingService(ctx context.Context, addr string, cfg config.App, log *logger.Logger) error {
	orders, conn, err := orderStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	qs := queue.NewService(orders)

	// The watcher keeps a cached queue view fresh from placement events,
	// with polling as the staleness backstop. A broker outage only costs
	// latency: the handler falls back to live store reads.
	var consumer queue.Consumer
	mqc, err := mq.Dial(cfg.Rabbit.URL())
	if err != nil {
		log.Error("rabbitmq_unavailable", err, nil)
	} else {
		defer mqc.Close()
		if err := mqc.DeclareAll(); err != nil {
			return err
		}
		consumer = mqc
	}

	snap := queue.NewSnapshot()
	watcher := queue.NewWatcher(qs, consumer, "", cfg.Queue.PollInterval(), snap.Set, log)
	go func() { _ = watcher.Run(ctx) }()

	staleness := time.Duration(cfg.Queue.StalenessBoundSeconds) * time.Second
	return tracking.Run(ctx, addr, orders, qs, snap, staleness, log)
}

func runNotificationSubscriber(ctx context.Context, cfg config.App, log *logger.Logger) error {
	mqc, err := mq.Dial(cfg.Rabbit.URL())
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	defer mqc.Close()
	if err := mqc.DeclareAll(); err != nil {
		return err
	}

	sub := notify.NewSubscriber(mqc, notify.NewLogNotifier(log), log)
	return sub.Run(ctx)
}
