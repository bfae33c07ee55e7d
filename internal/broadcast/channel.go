// Package broadcast is a same-machine publish/subscribe channel used to keep
// independently running console instances eventually consistent.
//
// A channel is a directory; every publisher appends JSON lines to its own
// origin-stamped shard file (events.<origin>.jsonl) and watches the directory
// for appends to everyone else's shards. Skipping the own shard is what makes
// a publish invisible to its publisher: events only fan out to the other
// instances. Messages are not persistent history: a subscriber only sees
// events appended after it opened the channel, and a shard lives only as long
// as its instance. Close removes it; Open sweeps shards abandoned by
// instances that never closed cleanly.
package broadcast

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const shardPrefix = "events."

// staleShardAge bounds how long a crashed instance's shard can linger before
// a later Open sweeps it. Live instances touch their shard on every publish.
const staleShardAge = 24 * time.Hour

// closeLinger is how long a freshly published line must stay readable before
// Close may remove the shard. Watchers drain appends asynchronously; removing
// the file under them would drop the tail.
const closeLinger = 100 * time.Millisecond

type Channel struct {
	name   string
	dir    string
	origin string
	shard  string
	log    *zap.Logger

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	subs    map[chan Event]struct{}
	offsets map[string]int64
	lastPub time.Time

	closeOnce sync.Once
	done      chan struct{}
}

type Option func(*Channel)

func WithLogger(log *zap.Logger) Option {
	return func(c *Channel) { c.log = log }
}

// Open joins the named channel rooted at baseDir. Each Open creates an
// independent subscriber with its own origin id; components open a channel for
// their own lifetime and Close it when they go away.
func Open(baseDir, name string, opts ...Option) (*Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("broadcast: missing channel name")
	}
	dir := filepath.Join(baseDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("broadcast: create channel dir: %w", err)
	}
	removeStaleShards(dir)

	origin := uuid.NewString()
	c := &Channel{
		name:    name,
		dir:     dir,
		origin:  origin,
		shard:   filepath.Join(dir, shardPrefix+origin+".jsonl"),
		log:     zap.NewNop(),
		subs:    map[chan Event]struct{}{},
		offsets: map[string]int64{},
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	// Start reading at the current end of every existing shard; a channel
	// delivers only what is published while it is open.
	if err := c.seekToEnd(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("broadcast: watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("broadcast: watch %s: %w", dir, err)
	}
	c.watcher = w

	go c.watchLoop()
	return c, nil
}

func (c *Channel) Name() string   { return c.name }
func (c *Channel) Origin() string { return c.origin }

// Publish appends the event to this instance's shard. The event is stamped
// with the channel origin so no subscriber of this same instance sees it.
func (c *Channel) Publish(ev Event) error {
	if !ev.valid() {
		return fmt.Errorf("broadcast: invalid event type %q", ev.Type)
	}
	ev.Origin = c.origin

	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("broadcast: encode event: %w", err)
	}

	f, err := os.OpenFile(c.shard, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("broadcast: open shard: %w", err)
	}
	defer f.Close()

	// Single write keeps the line atomic for same-machine readers.
	if _, err := f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("broadcast: append event: %w", err)
	}

	c.mu.Lock()
	c.lastPub = time.Now()
	c.mu.Unlock()
	return nil
}

// Subscribe registers an independent delivery stream. Every subscriber of the
// channel receives every foreign event (fan-out, not a queue). The returned
// cancel must be called when the subscriber goes away.
func (c *Channel) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, ch)
			c.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Close stops delivery and removes the instance's shard. Late joiners never
// replay, so the file has no value past the instance's lifetime; removal
// lingers briefly after a publish so live watchers can drain the tail first.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		if c.watcher != nil {
			err = c.watcher.Close()
		}

		c.mu.Lock()
		last := c.lastPub
		c.mu.Unlock()
		if !last.IsZero() {
			if wait := closeLinger - time.Since(last); wait > 0 {
				time.Sleep(wait)
			}
		}
		if rmErr := os.Remove(c.shard); rmErr != nil && !os.IsNotExist(rmErr) {
			c.log.Warn("removing channel shard",
				zap.String("channel", c.name), zap.Error(rmErr))
		}
	})
	return err
}

// removeStaleShards is a best-effort sweep of shards whose owning instance
// died without Close. The age threshold is generous so an idle but live
// instance does not lose its shard mid-session.
func removeStaleShards(dir string) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, ent := range ents {
		if ent.IsDir() || !isShard(ent.Name()) {
			continue
		}
		info, err := ent.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) > staleShardAge {
			_ = os.Remove(filepath.Join(dir, ent.Name()))
		}
	}
}

func (c *Channel) watchLoop() {
	for {
		select {
		case <-c.done:
			return
		case _, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			// Any write in the channel dir wakes a full shard scan; offsets make
			// the re-read cheap and fsnotify coalescing harmless.
			c.drainShards()
		case werr, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.log.Warn("channel watch error", zap.String("channel", c.name), zap.Error(werr))
		}
	}
}

func (c *Channel) seekToEnd() error {
	ents, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("broadcast: read channel dir: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ent := range ents {
		if ent.IsDir() || !isShard(ent.Name()) {
			continue
		}
		info, err := ent.Info()
		if err != nil {
			continue
		}
		c.offsets[ent.Name()] = info.Size()
	}
	return nil
}

func (c *Channel) drainShards() {
	ents, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}
	ownShard := filepath.Base(c.shard)

	for _, ent := range ents {
		name := ent.Name()
		if ent.IsDir() || !isShard(name) || name == ownShard {
			continue
		}
		for _, ev := range c.readNew(name) {
			if ev.Origin == c.origin {
				continue
			}
			c.deliver(ev)
		}
	}
}

// readNew returns complete new lines appended to the shard since the last
// read, advancing the stored offset past them. A partially written trailing
// line stays unread until its newline arrives.
func (c *Channel) readNew(name string) []Event {
	c.mu.Lock()
	offset := c.offsets[name]
	c.mu.Unlock()

	f, err := os.Open(filepath.Join(c.dir, name))
	if err != nil {
		return nil
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil
	}

	var (
		events []Event
		read   int64
	)
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadBytes('\n')
		if err != nil {
			break // EOF or a line still being written
		}
		read += int64(len(line))

		var ev Event
		if jerr := json.Unmarshal(line, &ev); jerr != nil || !ev.valid() {
			c.log.Warn("dropping malformed channel event",
				zap.String("channel", c.name),
				zap.String("shard", name))
			continue
		}
		events = append(events, ev)
	}

	if read > 0 {
		c.mu.Lock()
		c.offsets[name] = offset + read
		c.mu.Unlock()
	}
	return events
}

func (c *Channel) deliver(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber; it converges on the next event's re-fetch anyway.
			c.log.Warn("subscriber lagging, event dropped", zap.String("channel", c.name))
		}
	}
}

func isShard(name string) bool {
	return strings.HasPrefix(name, shardPrefix) && strings.HasSuffix(name, ".jsonl")
}
