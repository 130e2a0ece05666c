package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/audioset/internal/audio"
	"github.com/dgnsrekt/audioset/internal/block"
	"github.com/dgnsrekt/audioset/internal/cache"
	"github.com/dgnsrekt/audioset/internal/playback"
	"github.com/dgnsrekt/audioset/internal/queue"
	"github.com/dgnsrekt/audioset/internal/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// playPollInterval is how often headless playback checks whether it is done.
const playPollInterval = 100 * time.Millisecond

var (
	playIndex int
	playAll   bool

	playCmd = &cobra.Command{
		Use:   "play SOURCE",
		Short: "Play an audioset block without the TUI",
		Long: paragraph(fmt.Sprintf(
			"\n%s the Nth audioset block of a markdown document, applying its speed, volume, start, stop and loop directives. Looping clips play until interrupted.",
			keyword("Play"),
		)),
		Example:      paragraph("audioset play notes.md\naudioset play notes.md --index 2\naudioset play notes.md --all"),
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if playAll {
				clips, err := playableClips(args[0])
				if err != nil {
					return err
				}
				return playSession(ctx, clips)
			}

			clip, err := selectClip(args[0], playIndex)
			if err != nil {
				return err
			}
			return playClip(ctx, clip)
		},
	}
)

func scanSource(arg string) ([]render.Clip, error) {
	src, err := sourceFromArg(arg)
	if err != nil {
		return nil, err
	}
	defer src.reader.Close() //nolint:errcheck

	b, v, err := readSource(src)
	if err != nil {
		return nil, err
	}

	clips := render.Scan(b, v)
	if len(clips) == 0 {
		return nil, errors.New("no audioset blocks found")
	}
	return clips, nil
}

// playableClips returns the blocks of the document that resolve to a file,
// in document order. Broken blocks are reported and skipped.
func playableClips(arg string) ([]render.Clip, error) {
	clips, err := scanSource(arg)
	if err != nil {
		return nil, err
	}

	var playable []render.Clip
	for i, c := range clips {
		if !c.OK() {
			fmt.Println(failure(fmt.Sprintf("skipping block %d: ", i+1)) + c.Message)
			continue
		}
		playable = append(playable, c)
	}
	if len(playable) == 0 {
		return nil, errors.New("no playable audioset blocks found")
	}
	return playable, nil
}

// selectClip returns the index-th (1-based) audioset block of the document.
func selectClip(arg string, index int) (render.Clip, error) {
	clips, err := scanSource(arg)
	if err != nil {
		return render.Clip{}, err
	}
	if index < 1 || index > len(clips) {
		return render.Clip{}, fmt.Errorf("index must be between 1 and %d, got %d", len(clips), index)
	}

	clip := clips[index-1]
	if !clip.OK() {
		return clip, errors.New(clip.Message)
	}
	return clip, nil
}

// openPlayer opens the audio device. The returned func closes the player
// and the disk cache behind it.
func openPlayer() (*audio.Player, func(), error) {
	disk := openDiskCache()
	player, err := audio.NewPlayer(audio.Config{
		SampleRate: viper.GetInt("audio.sample_rate"),
		Cache:      cache.NewMemoryCache(viper.GetInt64("audio.cache_size")),
		Disk:       disk,
	})
	if err != nil {
		closeDiskCache(disk)
		return nil, nil, fmt.Errorf("unable to open audio device: %w", err)
	}
	return player, func() {
		_ = player.Close()
		closeDiskCache(disk)
	}, nil
}

func playClip(ctx context.Context, clip render.Clip) error {
	player, closePlayer, err := openPlayer()
	if err != nil {
		return err
	}
	defer closePlayer()

	return playLoaded(ctx, player, clip)
}

// playSession plays clips one after another on a single device. The clip
// after the current one is decoded in the background while it plays.
func playSession(ctx context.Context, clips []render.Clip) error {
	player, closePlayer, err := openPlayer()
	if err != nil {
		return err
	}
	defer closePlayer()

	q := queue.New(len(clips), queue.WithPrefetch(func(c render.Clip) error {
		return player.Preload(c.File.Path)
	}))
	defer q.Close() //nolint:errcheck

	if _, err := q.EnqueueBatch(clips, false); err != nil {
		return err
	}

	for n := 1; ; n++ {
		clip, err := q.Dequeue()
		if errors.Is(err, queue.ErrQueueEmpty) {
			break
		}
		if err != nil {
			return err
		}

		fmt.Println(subtle(fmt.Sprintf("[%d/%d]", n, len(clips))))
		if err := playLoaded(ctx, player, clip); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}

	s := q.Stats()
	log.Debug("play session finished", "played", s.TotalDequeued, "prefetched", s.TotalPrefetched, "prefetchErrors", s.PrefetchErrors)
	return nil
}

// playLoaded plays clip on player until it stops, ends, or ctx is done.
func playLoaded(ctx context.Context, player *audio.Player, clip render.Clip) error {
	if err := player.Load(clip.File.Path); err != nil {
		return fmt.Errorf("unable to load %s: %w", clip.Block.File, err)
	}

	ctrl := playback.NewController(clip.Block, player)
	ctrl.Subscribe(func(e playback.Event) {
		switch e.Type {
		case playback.EventLoopedBack:
			fmt.Println(subtle("⟲ looped back at " + block.FormatTime(e.Time)))
		case playback.EventStopped:
			fmt.Println(subtle("■ stopped at " + block.FormatTime(e.Time)))
		}
	})
	player.SetListener(ctrl)

	for _, line := range clip.Info {
		fmt.Println(keyword("🔊 ") + line)
	}
	for _, w := range clip.Block.Warnings {
		fmt.Println(failure("warning: ") + w)
	}

	if err := ctrl.Play(); err != nil {
		return fmt.Errorf("unable to play: %w", err)
	}

	ticker := time.NewTicker(playPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("playback interrupted", "file", clip.Block.File)
			return ctrl.Stop()
		case <-ticker.C:
			if err := ctrl.Err(); err != nil {
				return err
			}
			switch ctrl.State() {
			case playback.StateStopped, playback.StateEnded:
				return nil
			}
		}
	}
}

func init() {
	playCmd.Flags().IntVarP(&playIndex, "index", "i", 1, "1-based index of the block to play")
	playCmd.Flags().BoolVarP(&playAll, "all", "a", false, "play every block of the document in order")
	playCmd.MarkFlagsMutuallyExclusive("index", "all")
}
