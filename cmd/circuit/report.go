package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/zeusync/circuit/internal/core/storage"
	"github.com/zeusync/circuit/internal/runner"
)

// storeTimeout bounds the leaderboard queries, which still run after the
// batch was interrupted.
const storeTimeout = 5 * time.Second

// report prints this batch, then the stored history of the race. The batch
// section is written before the store is queried.
func report(ctx context.Context, w io.Writer, race string, outcomes []runner.Outcome, store storage.ResultStore, top int) error {
	if err := reportBatch(w, race, outcomes); err != nil {
		return err
	}
	if store == nil || top <= 0 {
		return nil
	}

	qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	return reportStore(qctx, w, race, store, top)
}

func reportBatch(w io.Writer, race string, outcomes []runner.Outcome) error {
	sum := runner.Summarize(outcomes)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s: %d races, %d finished, %d abandoned, player won %d\n",
		race, sum.Races, sum.Finished, sum.Abandoned, sum.PlayerWins)
	fmt.Fprintln(tw, "SEED\tSESSION\tWINNER\tTIME\tTICKS")
	for _, o := range outcomes {
		if o.Session == "" {
			continue
		}
		winner := o.Winner
		if !o.Finished {
			winner = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", o.Seed, o.Session, winner, o.Elapsed.Round(time.Millisecond), o.Ticks)
	}
	if sum.FastestLap > 0 {
		fmt.Fprintf(tw, "fastest lap\t%s\tby %s\n", sum.FastestLap.Round(time.Millisecond), sum.FastestBy)
	}
	return tw.Flush()
}

func reportStore(ctx context.Context, w io.Writer, race string, store storage.ResultStore, top int) error {
	history, err := store.Results(ctx, race)
	if err != nil {
		return err
	}
	best, err := store.BestLaps(ctx, race, top)
	if err != nil {
		return err
	}
	wins, err := store.Wins(ctx, race)
	if err != nil {
		return err
	}

	playerWins := 0
	for _, r := range history {
		if r.PlayerWon {
			playerWins++
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\nstored: %d races, player won %d\n", len(history), playerWins)
	fmt.Fprintln(tw, "BEST LAPS\tDRIVER\tLAP\tSESSION")
	for i, l := range best {
		fmt.Fprintf(tw, "%d. %s\t%s\t%d\t%s\n", i+1, l.Duration.Round(time.Millisecond), l.Actor, l.Lap, l.Session)
	}
	fmt.Fprintln(tw, "\nWINS\tDRIVER")
	for _, c := range wins {
		fmt.Fprintf(tw, "%d\t%s\n", c.Wins, c.Winner)
	}
	return tw.Flush()
}
