package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/uranai/internal/feedstub"
	"github.com/okian/uranai/pkg/logger"
)

func main() {
	var (
		addr     = flag.String("addr", ":9081", "Listen address")
		seed     = flag.Uint64("seed", 0, "Shuffle the ranking with this seed (0 keeps identity order)")
		order    = flag.String("order", "", "Explicit comma separated ids, overrides -seed")
		encoding = flag.String("encoding", feedstub.EncodingUTF8, "utf-8 or shift_jis")
		shift    = flag.Int("shift", 0, "Date the document this many days from today")
		status   = flag.Int("status", 0, "Answer every request with this HTTP status")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		feedstub.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	opts := []feedstub.Option{
		feedstub.WithEncoding(*encoding),
		feedstub.WithDayShift(*shift),
		feedstub.WithStatus(*status),
	}
	if *seed != 0 {
		opts = append(opts, feedstub.WithSeed(*seed))
	}
	ids, err := feedstub.ParseOrder(*order)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}
	opts = append(opts, feedstub.WithOrder(ids))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := feedstub.New(opts...).ListenAndServe(ctx, *addr); err != nil {
		logger.Get().Error(ctx, "feed stub failed", logger.Error(err))
		os.Exit(1)
	}
}
