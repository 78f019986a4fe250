// Package analyzer builds the semantic model of a Tauri backend tree: which
// functions are bridgeable, which types cross the boundary, and which events
// the backend broadcasts. It is pure with respect to its inputs; scanning,
// rendering and writing live behind the contracts package.
package analyzer

import (
	"errors"
	"runtime"
	"sort"
	"sync"

	"github.com/tauria/tauria-tsgen/analyzer/contracts"
	"github.com/tauria/tauria-tsgen/analyzer/models"
)

// BridgeAnalyzer implements contracts.IBridgeAnalyzer.
type BridgeAnalyzer struct {
	workers int
	cache   *CacheManager // nil disables the parse cache
}

type Option func(*BridgeAnalyzer)

// WithWorkers caps the parse worker pool. Zero means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(a *BridgeAnalyzer) { a.workers = n }
}

// WithCache attaches a content-keyed parse cache. Cache hits cannot change
// the model: parsing is a pure function of file content.
func WithCache(c *CacheManager) Option {
	return func(a *BridgeAnalyzer) { a.cache = c }
}

func NewBridgeAnalyzer(opts ...Option) contracts.IBridgeAnalyzer {
	a := &BridgeAnalyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs Scan results through Parse -> Resolve -> Detect-Events ->
// Assemble. Parse and resolve run per file on a worker pool; results are
// re-joined into scan order before assembly so the final model is identical
// regardless of worker completion order. A single file's parse failure
// contributes a localized error rather than aborting the pass.
func (a *BridgeAnalyzer) Analyze(files []*models.SourceFile) (*models.Model, error) {
	report := models.NewReport()
	parsed := a.parseAll(files)

	outcomes := make([]*fileOutcome, len(files))
	var allEvents []*models.EventSite

	for i, pr := range parsed {
		out := &fileOutcome{file: files[i]}
		if pr.err != nil {
			report.Errorf(models.SyntaxError, pr.err.File, pr.err.Line, "%s", pr.err.Reason)
			out.failed = true
			outcomes[i] = out
			continue
		}

		report.Merge(pr.report)
		module := moduleName(files[i].Name)
		fileReport := models.NewReport()

		for _, fn := range pr.file.Functions {
			out.commands = append(out.commands, buildCommand(fn, pr.file, module, fileReport))
		}
		for _, t := range pr.file.Types {
			out.types = append(out.types, buildTypeDecl(t, pr.file, module, fileReport))
		}
		out.events = detectEvents(pr.file, fileReport)
		allEvents = append(allEvents, out.events...)

		report.Merge(fileReport)
		outcomes[i] = out
	}

	root, flatTypes, err := assemble(outcomes, report)
	if err != nil {
		return nil, err
	}

	model := &models.Model{
		Root:   root,
		Types:  flatTypes,
		Events: mergeEvents(allEvents, report),
		Report: report,
	}

	a.resolveForwardRefs(model)
	a.applySerdeRules(model)
	return model, nil
}

type parseResult struct {
	file   *models.ParsedFile
	report *models.Report
	err    *ParseError
}

// parseAll parses every file on a worker pool, each worker owning its own
// tree-sitter parser, and returns results indexed by scan order.
func (a *BridgeAnalyzer) parseAll(files []*models.SourceFile) []*parseResult {
	numWorkers := a.workers
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}
	results := make([]*parseResult, len(files))
	if len(files) == 0 {
		return results
	}

	work := make(chan int, len(files))
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			parser, perr := NewParser()
			for idx := range work {
				if perr != nil {
					results[idx] = &parseResult{err: &ParseError{
						File:   files[idx].RelPath,
						Line:   1,
						Reason: perr.Error(),
					}}
					continue
				}
				results[idx] = a.parseOne(parser, files[idx])
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)
	wg.Wait()

	return results
}

func (a *BridgeAnalyzer) parseOne(parser *Parser, file *models.SourceFile) *parseResult {
	if a.cache != nil {
		if cached, ok := a.cache.Get(file); ok {
			return &parseResult{file: cached, report: models.NewReport()}
		}
	}

	pf, err := parser.ParseFile(file)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return &parseResult{err: pe}
		}
		return &parseResult{err: &ParseError{File: file.RelPath, Line: 1, Reason: err.Error()}}
	}

	if a.cache != nil {
		a.cache.Put(file, pf)
	}
	return &parseResult{file: pf, report: models.NewReport()}
}

// resolveForwardRefs is the second resolution pass: named references are
// checked against the completed type model, so declaration order across
// files is irrelevant.
func (a *BridgeAnalyzer) resolveForwardRefs(model *models.Model) {
	declared := map[string]bool{}
	for _, t := range model.Types {
		declared[t.Name] = true
	}

	model.Root.Walk(func(_ []string, node *models.ModuleNode) {
		for _, cmd := range node.Commands {
			for i := range cmd.Params {
				markKnownRefs(cmd.Params[i].Type, declared)
			}
			markKnownRefs(cmd.Return, declared)
		}
	})
	for _, t := range model.Types {
		for i := range t.Fields {
			markKnownRefs(t.Fields[i].Type, declared)
		}
		for i := range t.Variants {
			for _, d := range t.Variants[i].Tuple {
				markKnownRefs(d, declared)
			}
			for j := range t.Variants[i].Fields {
				markKnownRefs(t.Variants[i].Fields[j].Type, declared)
			}
		}
	}
	for _, e := range model.Events {
		markKnownRefs(e.Payload, declared)
	}
}

// applySerdeRules enforces the wire-format constraints: an argument whose
// user-defined type cannot be deserialized never reaches the backend, and a
// return value whose type cannot be serialized degrades to opaque.
func (a *BridgeAnalyzer) applySerdeRules(model *models.Model) {
	deserializable := map[string]bool{}
	serializable := map[string]bool{}
	for _, t := range model.Types {
		if t.Deserializable {
			deserializable[t.Name] = true
		}
		if t.Serializable {
			serializable[t.Name] = true
		}
	}
	declared := map[string]bool{}
	for _, t := range model.Types {
		declared[t.Name] = true
	}

	model.Root.Walk(func(_ []string, node *models.ModuleNode) {
		for _, cmd := range node.Commands {
			kept := cmd.Params[:0]
			for _, p := range cmd.Params {
				if name, bad := refusedRef(p.Type, declared, deserializable); bad {
					model.Report.Warnf(models.UnsupportedType, "", 0,
						"dropping parameter %q of command %q: type %q does not derive Deserialize",
						p.Name, cmd.Name, name)
					continue
				}
				kept = append(kept, p)
			}
			cmd.Params = kept

			if name, bad := refusedRef(cmd.Return, declared, serializable); bad {
				model.Report.Warnf(models.UnsupportedType, "", 0,
					"return type of command %q is opaque: type %q does not derive Serialize",
					cmd.Name, name)
				cmd.Return = models.Opaque()
			}
		}
	})
}

// refusedRef reports the first declared named type inside d that is missing
// the required serde capability. Names are checked in sorted order so the
// same model always produces the same warning.
func refusedRef(d *models.TypeDescriptor, declared, allowed map[string]bool) (string, bool) {
	refs := map[string]bool{}
	collectNamedRefs(d, refs)
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if declared[name] && !allowed[name] {
			return name, true
		}
	}
	return "", false
}
