package manager

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxInflight   = 1
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second

	// DefaultMaxImagePixels bounds the decoded size of one upload
	// (40M pixels is about 160 MB as RGBA).
	DefaultMaxImagePixels = 40_000_000
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Classifier may be nil and installed later with SetClassifier.
	Classifier     Classifier
	MaxInflight    int
	MaxQueueDepth  int
	MaxWait        time.Duration
	MaxImagePixels int64 // uploads whose header declares more pixels are rejected
	Log            zerolog.Logger
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		state:     StateLoading,
		log:       cfg.Log,
		startTime: time.Now(),
	}
	if cfg.MaxInflight <= 0 {
		m.maxInflight = defaultMaxInflight
	} else {
		m.maxInflight = cfg.MaxInflight
	}
	if cfg.MaxQueueDepth <= 0 {
		m.maxQueueDepth = defaultMaxQueueDepth
	} else {
		m.maxQueueDepth = cfg.MaxQueueDepth
	}
	if cfg.MaxWait <= 0 {
		m.maxWait = defaultMaxWait
	} else {
		m.maxWait = cfg.MaxWait
	}
	if cfg.MaxImagePixels <= 0 {
		m.maxImagePixels = DefaultMaxImagePixels
	} else {
		m.maxImagePixels = cfg.MaxImagePixels
	}
	m.genCh = make(chan struct{}, m.maxInflight)
	m.queueCh = make(chan struct{}, m.maxInflight+m.maxQueueDepth)
	if cfg.Classifier != nil {
		m.SetClassifier(cfg.Classifier)
	}
	return m
}
