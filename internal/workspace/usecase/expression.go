package usecase

import (
	"fmt"
	"reflect"
	"sync"

	apperrors "workly-web/internal/shared/errors"
	"workly-web/internal/workspace/domain/model"

	"github.com/google/cel-go/cel"
)

const compiledCacheSize = 128

// IssuePredicate is a compiled `where` expression over one issue.
type IssuePredicate struct {
	source  string
	program cel.Program
}

// Source returns the expression text.
func (p *IssuePredicate) Source() string {
	return p.source
}

// Match evaluates the expression against issue.
func (p *IssuePredicate) Match(issue *model.Issue) (bool, error) {
	out, _, err := p.program.Eval(issueVariables(issue))
	if err != nil {
		return false, fmt.Errorf("%w: %v", apperrors.ErrInvalidExpression, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: expression did not return a boolean", apperrors.ErrInvalidExpression)
	}
	return result, nil
}

func issueVariables(issue *model.Issue) map[string]interface{} {
	return map[string]interface{}{
		"title":        issue.Title,
		"description":  issue.Description,
		"status":       string(issue.Status),
		"priority":     string(issue.Priority),
		"priorityRank": int64(issue.Priority.Rank()),
		"number":       int64(issue.Number),
		"assigneeId":   issue.EffectiveAssigneeID(),
		"creatorId":    creatorID(issue),
		"labels":       issue.LabelNames(),
		"createdAt":    issue.CreatedAt,
		"updatedAt":    issue.UpdatedAt,
	}
}

func creatorID(issue *model.Issue) string {
	if issue.CreatorID != "" {
		return issue.CreatorID
	}
	return issue.Creator.ID
}

// ExpressionCompiler compiles issue `where` expressions written in CEL, e.g.
// `priorityRank >= 2 && "bug" in labels`.
type ExpressionCompiler struct {
	env       *cel.Env
	maxLength int
	costLimit uint64

	mu    sync.Mutex
	cache map[string]*IssuePredicate
}

// NewExpressionCompiler creates a compiler. Expressions longer than maxLength
// are rejected; evaluation stops once costLimit is spent (0 means no limit).
func NewExpressionCompiler(maxLength int, costLimit uint64) (*ExpressionCompiler, error) {
	env, err := cel.NewEnv(
		cel.Variable("title", cel.StringType),
		cel.Variable("description", cel.StringType),
		cel.Variable("status", cel.StringType),
		cel.Variable("priority", cel.StringType),
		cel.Variable("priorityRank", cel.IntType),
		cel.Variable("number", cel.IntType),
		cel.Variable("assigneeId", cel.StringType),
		cel.Variable("creatorId", cel.StringType),
		cel.Variable("labels", cel.ListType(cel.StringType)),
		cel.Variable("createdAt", cel.TimestampType),
		cel.Variable("updatedAt", cel.TimestampType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create expression environment: %w", err)
	}
	return &ExpressionCompiler{
		env:       env,
		maxLength: maxLength,
		costLimit: costLimit,
		cache:     make(map[string]*IssuePredicate),
	}, nil
}

// Compile parses and type-checks expr. Errors are validation errors wrapping
// errors.ErrInvalidExpression.
func (c *ExpressionCompiler) Compile(expr string) (*IssuePredicate, error) {
	if c.maxLength > 0 && len(expr) > c.maxLength {
		return nil, invalidExpression(fmt.Errorf("expression longer than %d characters", c.maxLength))
	}

	c.mu.Lock()
	if p, ok := c.cache[expr]; ok {
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	ast, issues := c.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, invalidExpression(issues.Err())
	}
	if !reflect.DeepEqual(ast.OutputType(), cel.BoolType) {
		return nil, invalidExpression(fmt.Errorf("expression must return a boolean, got %v", ast.OutputType()))
	}

	var opts []cel.ProgramOption
	if c.costLimit > 0 {
		opts = append(opts, cel.CostLimit(c.costLimit))
	}
	program, err := c.env.Program(ast, opts...)
	if err != nil {
		return nil, invalidExpression(err)
	}

	p := &IssuePredicate{source: expr, program: program}

	c.mu.Lock()
	if len(c.cache) >= compiledCacheSize {
		c.cache = make(map[string]*IssuePredicate)
	}
	c.cache[expr] = p
	c.mu.Unlock()
	return p, nil
}

func invalidExpression(cause error) *apperrors.AppError {
	return apperrors.NewValidationError("Invalid filter expression: " + cause.Error()).
		WithCause(fmt.Errorf("%w: %v", apperrors.ErrInvalidExpression, cause)).
		WithComponent("workspace")
}
