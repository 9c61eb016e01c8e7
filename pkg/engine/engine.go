// Package engine provides the Lisp evaluation engine for urdfkit.
// It wraps zygomys in a sandboxed environment whose builtins drive the
// pkg/urdf builders, producing a URDF document from user source code.
package engine

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"

	"github.com/chazu/urdfkit/pkg/urdf"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code or a rejected
// builder call. Err holds the builder error when there is one, so
// errors.Is(evalErr, urdf.ErrDuplicateName) works.
type EvalError struct {
	Line    int
	Col     int
	Message string
	Err     error
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

func (e EvalError) Unwrap() error { return e.Err }

// Result is the output of a successful evaluation.
type Result struct {
	Document []byte
	Robot    string
	Links    []string
	Joints   []urdf.JointInfo
	Shapes   []urdf.ShapeInfo
}

// Engine wraps the zygomys interpreter for urdfkit evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment and a fresh builder session for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	log     *zap.Logger
	timeout time.Duration
	indent  string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for evaluation and builder events.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithTimeout overrides EvalTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithIndent sets the document indentation unit.
func WithIndent(indent string) Option {
	return func(e *Engine) { e.indent = indent }
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{log: zap.NewNop(), timeout: EvalTimeout, indent: "  "}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate takes Lisp source code and produces a URDF document.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval/builder failure: returns nil result + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Result, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	log := e.log.With(zap.Uint64("generation", gen))
	log.Info("evaluation started", zap.Int("bytes", len(source)))
	start := time.Now()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, evalErrs, err := e.evaluate(source, log)
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	res, evalErrs, err := waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout)
	fields := []zap.Field{zap.Duration("duration", time.Since(start)), zap.Int("errors", len(evalErrs))}
	switch {
	case err != nil:
		log.Error("evaluation failed", append(fields, zap.Error(err))...)
	case len(evalErrs) > 0:
		log.Warn("evaluation finished with errors", append(fields, zap.String("first", evalErrs[0].Message))...)
	default:
		log.Info("evaluation finished", append(fields, zap.Int("links", len(res.Links)), zap.Int("joints", len(res.Joints)))...)
	}
	return res, evalErrs, err
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string, log *zap.Logger) (*Result, []EvalError, error) {
	// Empty source is a valid program that produces an empty document.
	if strings.TrimSpace(source) == "" {
		return &Result{}, nil, nil
	}

	var buf bytes.Buffer
	b := newBuilder(urdf.NewSession(&buf, urdf.WithLogger(log), urdf.WithIndent(e.indent)))

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, b.annotate(parseZygomysError(err)), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, b.annotate(parseZygomysError(err)), nil
	}

	if err := b.finish(); err != nil {
		return nil, b.annotate([]EvalError{{Message: err.Error()}}), nil
	}

	res := &Result{
		Document: buf.Bytes(),
		Links:    b.s.Links(),
		Joints:   b.s.Joints(),
		Shapes:   b.s.Shapes(),
	}
	if b.robot != nil {
		res.Robot, _ = b.robot.Name()
	}
	return res, nil, nil
}

// annotate attaches the first recorded builder error to evalErrs.
func (b *builder) annotate(evalErrs []EvalError) []EvalError {
	if b.failure == nil || len(evalErrs) == 0 {
		return evalErrs
	}
	evalErrs[0].Err = b.failure
	var be *urdf.BuilderError
	if errors.As(b.failure, &be) && !strings.Contains(evalErrs[0].Message, be.Error()) {
		evalErrs[0].Message += ": " + be.Error()
	}
	return evalErrs
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
