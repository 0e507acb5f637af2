// Package deploy runs the per-unit pipeline: package each selected unit,
// hand the archive to the platform, then publish versions and move aliases.
package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/cameronsjo/lambdo/internal/artifact"
	"github.com/cameronsjo/lambdo/internal/bundle"
	"github.com/cameronsjo/lambdo/internal/fileutil"
	"github.com/cameronsjo/lambdo/internal/gitinfo"
	"github.com/cameronsjo/lambdo/internal/logging"
	"github.com/cameronsjo/lambdo/internal/manifest"
)

// LatestVersion addresses the unpublished head of a function.
const LatestVersion = "$LATEST"

// ErrNoVersions is returned when an alias should move to the newest
// published version but none exists.
var ErrNoVersions = errors.New("no published versions")

//go:generate mockgen -source=engine.go -destination=mock/mock_deploy.go -package=mock

// Platform is the deployment collaborator.
type Platform interface {
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, name string, spec *manifest.UnitSpec, code artifact.Code) error
	UpdateConfig(ctx context.Context, name string, spec *manifest.UnitSpec) error
	UpdateCode(ctx context.Context, name string, code artifact.Code) error
	PublishVersion(ctx context.Context, name, description string) (string, error)
	ListVersions(ctx context.Context, name string) ([]string, error)
	ListAliases(ctx context.Context, name string) ([]string, error)
	CreateAlias(ctx context.Context, name, alias, version string) error
	UpdateAlias(ctx context.Context, name, alias, version string) error
}

// Store uploads archives so the platform can fetch them by location.
type Store interface {
	Put(ctx context.Context, name, digest string, data []byte) (artifact.Location, error)
}

// Action is what happened to a unit or alias.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionSkipped Action = "skipped"
	ActionWritten Action = "written"
)

// Options selects the steps of a run.
type Options struct {
	// DryRun packages units without touching the platform.
	DryRun bool

	// Deploy hands each archive to the platform.
	Deploy bool

	// OutputDir, when set, receives <name>.zip for every packaged unit.
	OutputDir string

	// Publish snapshots $LATEST as a new version.
	Publish bool

	// Alias is created or moved for every unit when set.
	Alias string

	// Latest points Alias at $LATEST instead of the newest version.
	Latest bool

	// Description is the version description template. Empty selects
	// DefaultDescription.
	Description string
}

func (o Options) packs() bool {
	return o.DryRun || o.Deploy || o.OutputDir != ""
}

// Requires reports how much of each unit the selected steps read. Only a
// real deploy needs the platform fields; publishing and aliasing need
// nothing beyond the unit name.
func (o Options) Requires() manifest.Level {
	switch {
	case o.Deploy && !o.DryRun:
		return manifest.Deployable
	case o.packs():
		return manifest.Packaged
	default:
		return manifest.Decoded
	}
}

// UnitResult records the packaging and handoff of one unit.
type UnitResult struct {
	Name        string
	Action      Action
	ArchiveSize int64
	Digest      string
	Output      string
	Location    *artifact.Location
}

// VersionResult records a published version.
type VersionResult struct {
	Name    string
	Version string
}

// AliasResult records a created or moved alias.
type AliasResult struct {
	Name    string
	Alias   string
	Version string
	Action  Action
}

// Result collects everything a run did for one unit. Steps that did not run
// are left zero.
type Result struct {
	Unit    UnitResult
	Version *VersionResult
	Alias   *AliasResult
}

// Pipeline steps named in UnitError.
const (
	OpPack    = "pack"
	OpWrite   = "write"
	OpUpload  = "upload"
	OpDeploy  = "deploy"
	OpPublish = "publish"
	OpAlias   = "alias"
)

// UnitError is a failure of one step for one unit.
type UnitError struct {
	Unit string
	Op   string
	Err  error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Unit, e.Op, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}

// Engine runs units through the pipeline one at a time.
type Engine struct {
	platform Platform
	store    Store
	logger   *logging.Logger
	git      gitinfo.Info
	now      func() time.Time
	runID    string

	// Report is called once per unit, including a failed unit whose
	// earlier steps completed.
	Report func(Result)
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore uploads archives before handing them to the platform.
func WithStore(s Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithGitInfo makes repository metadata available to descriptions.
func WithGitInfo(info gitinfo.Info) Option {
	return func(e *Engine) { e.git = info }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(e *Engine) { e.runID = id }
}

// New creates an engine. The platform may be nil when no step of a run
// needs it (dry runs and archive output).
func New(platform Platform, opts ...Option) *Engine {
	e := &Engine{
		platform: platform,
		logger:   logging.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.runID == "" {
		e.runID = uuid.NewString()
	}
	return e
}

// RunID identifies this engine's runs in logs and descriptions.
func (e *Engine) RunID() string {
	return e.runID
}

// Run processes every unit of m in order and stops at the first failure.
// Results of the units processed so far are returned with the error.
func (e *Engine) Run(ctx context.Context, m *manifest.Manifest, opts Options) ([]Result, error) {
	if e.platform == nil && !opts.DryRun && (opts.Deploy || opts.Publish || opts.Alias != "") {
		return nil, errors.New("no platform configured")
	}

	var desc *template.Template
	if opts.Publish && !opts.DryRun {
		var err error
		if desc, err = ParseDescription(opts.Description); err != nil {
			return nil, err
		}
	}

	log := e.logger.WithComponent("deploy").WithRunID(e.runID)
	log.Debug().Int("units", m.Len()).Bool("dry_run", opts.DryRun).Msg("run started")

	var results []Result
	for _, unit := range m.Units {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if unit.Spec == nil {
			continue
		}

		res, err := e.runUnit(ctx, unit, opts, desc, log.WithUnit(unit.Name))
		if res.Unit.Action != "" || res.Version != nil || res.Alias != nil {
			results = append(results, res)
			if e.Report != nil {
				e.Report(res)
			}
		}
		if err != nil {
			log.Error().Err(err).Str("unit", unit.Name).Msg("run aborted")
			return results, err
		}
	}

	log.Debug().Int("results", len(results)).Msg("run finished")
	return results, nil
}

func (e *Engine) runUnit(ctx context.Context, unit manifest.Unit, opts Options, desc *template.Template, log *logging.Logger) (Result, error) {
	res := Result{Unit: UnitResult{Name: unit.Name}}

	if opts.packs() {
		if err := e.packAndHandOff(ctx, unit, opts, &res.Unit, log); err != nil {
			return res, err
		}
	}

	if opts.DryRun {
		if opts.Publish || opts.Alias != "" {
			log.Debug().Msg("dry run: skipping publish and alias")
		}
		return res, nil
	}

	if opts.Publish {
		v, err := e.publish(ctx, unit.Name, desc)
		if err != nil {
			return res, &UnitError{Unit: unit.Name, Op: OpPublish, Err: err}
		}
		res.Version = v
		log.Info().Str("version", v.Version).Msg("version published")
	}

	if opts.Alias != "" {
		a, err := e.alias(ctx, unit.Name, opts.Alias, opts.Latest)
		if err != nil {
			return res, &UnitError{Unit: unit.Name, Op: OpAlias, Err: err}
		}
		res.Alias = a
		log.Info().Str("alias", a.Alias).Str("version", a.Version).Str("action", string(a.Action)).Msg("alias set")
	}

	return res, nil
}

func (e *Engine) packAndHandOff(ctx context.Context, unit manifest.Unit, opts Options, res *UnitResult, log *logging.Logger) error {
	archive, err := bundle.Pack(bundle.Spec{
		Includes: unit.Spec.Includes,
		Excludes: unit.Spec.Excludes,
	})
	if err != nil {
		return &UnitError{Unit: unit.Name, Op: OpPack, Err: err}
	}
	res.ArchiveSize = archive.Size()
	res.Digest = archive.SHA256()
	log.Debug().Int("entries", archive.Len()).Int64("bytes", archive.Size()).Str("sha256", res.Digest).Msg("packaged")

	if opts.DryRun {
		res.Action = ActionSkipped
		return nil
	}

	if opts.OutputDir != "" {
		out := filepath.Join(opts.OutputDir, unit.Name+".zip")
		if _, err := fileutil.WriteFileAtomic(out, bytes.NewReader(archive.Bytes()), 0644); err != nil {
			return &UnitError{Unit: unit.Name, Op: OpWrite, Err: err}
		}
		res.Output = out
		res.Action = ActionWritten
		log.Debug().Str("path", out).Msg("archive written")
	}

	if !opts.Deploy {
		return nil
	}

	code := artifact.Inline(archive.Bytes())
	if e.store != nil {
		loc, err := e.store.Put(ctx, unit.Name, res.Digest, archive.Bytes())
		if err != nil {
			return &UnitError{Unit: unit.Name, Op: OpUpload, Err: err}
		}
		res.Location = &loc
		code = artifact.Stored(loc)
		log.Debug().Str("location", loc.String()).Msg("archive uploaded")
	}

	action, err := e.handOff(ctx, unit, code)
	if err != nil {
		return &UnitError{Unit: unit.Name, Op: OpDeploy, Err: err}
	}
	res.Action = action
	log.Info().Str("action", string(action)).Msg("deployed")
	return nil
}

func (e *Engine) handOff(ctx context.Context, unit manifest.Unit, code artifact.Code) (Action, error) {
	exists, err := e.platform.Exists(ctx, unit.Name)
	if err != nil {
		return "", err
	}

	if !exists {
		if err := e.platform.Create(ctx, unit.Name, unit.Spec, code); err != nil {
			return "", err
		}
		return ActionCreated, nil
	}

	if err := e.platform.UpdateConfig(ctx, unit.Name, unit.Spec); err != nil {
		return "", err
	}
	if err := e.platform.UpdateCode(ctx, unit.Name, code); err != nil {
		return "", err
	}
	return ActionUpdated, nil
}

func (e *Engine) publish(ctx context.Context, name string, desc *template.Template) (*VersionResult, error) {
	text, err := renderDescription(desc, newDescriptionData(name, e.now(), e.runID, e.git))
	if err != nil {
		return nil, err
	}
	version, err := e.platform.PublishVersion(ctx, name, text)
	if err != nil {
		return nil, err
	}
	return &VersionResult{Name: name, Version: version}, nil
}

func (e *Engine) alias(ctx context.Context, name, alias string, latest bool) (*AliasResult, error) {
	version := LatestVersion
	if !latest {
		versions, err := e.platform.ListVersions(ctx, name)
		if err != nil {
			return nil, err
		}
		if version, err = NewestVersion(versions); err != nil {
			return nil, err
		}
	}

	aliases, err := e.platform.ListAliases(ctx, name)
	if err != nil {
		return nil, err
	}

	action := ActionCreated
	if slices.Contains(aliases, alias) {
		action = ActionUpdated
		err = e.platform.UpdateAlias(ctx, name, alias, version)
	} else {
		err = e.platform.CreateAlias(ctx, name, alias, version)
	}
	if err != nil {
		return nil, err
	}
	return &AliasResult{Name: name, Alias: alias, Version: version, Action: action}, nil
}

// NewestVersion returns the highest numeric version. Non-numeric entries
// such as $LATEST are ignored.
func NewestVersion(versions []string) (string, error) {
	newest := -1
	for _, v := range versions {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			continue
		}
		newest = max(newest, n)
	}
	if newest < 0 {
		return "", ErrNoVersions
	}
	return strconv.Itoa(newest), nil
}
