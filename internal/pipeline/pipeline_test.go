package pipeline_test

import (
	"context"
	"strings"
	"testing"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/pipeline"
	"github.com/taskhive/taskhive/internal/result"
)

type createCmd struct {
	Name string
	Bio  string
}

type otherCmd struct {
	N int
}

func TestDispatch_NoValidators_PassesThroughVerbatim(t *testing.T) {
	r := pipeline.NewRegistry()

	handled := 0
	out := pipeline.Dispatch(context.Background(), r, otherCmd{N: 7}, func(_ context.Context, c otherCmd) result.Result[int] {
		handled++
		return result.Ok(c.N * 2)
	})

	if handled != 1 {
		t.Fatalf("handler invoked %d times, want 1", handled)
	}
	if out.Value() != 14 {
		t.Errorf("result = %d, want 14", out.Value())
	}
}

func TestDispatch_AllFailuresJoined_HandlerNeverRuns(t *testing.T) {
	r := pipeline.NewRegistry()
	pipeline.Register(r, func(_ context.Context, c createCmd) *domain.Error {
		if c.Name == "" {
			return domain.NewValidationError("NAME_REQUIRED", "A required")
		}
		return nil
	})
	pipeline.Register(r, func(_ context.Context, c createCmd) *domain.Error {
		if len(c.Bio) < 3 {
			return domain.NewValidationError("BIO_TOO_SHORT", "B too short")
		}
		return nil
	})

	handled := 0
	out := pipeline.Dispatch(context.Background(), r, createCmd{}, func(_ context.Context, c createCmd) result.Result[string] {
		handled++
		return result.Ok("created")
	})

	if handled != 0 {
		t.Fatalf("handler invoked %d times despite validation failures", handled)
	}
	if out.IsOk() {
		t.Fatal("validation failures produced success")
	}

	msg := out.Error().Message
	if !strings.Contains(msg, "A required") || !strings.Contains(msg, "B too short") {
		t.Errorf("joined message %q missing a validator's failure", msg)
	}
	if !strings.Contains(msg, "; ") {
		t.Errorf("message %q is not semicolon-joined", msg)
	}
	if out.Error().Category != domain.CategoryValidation {
		t.Errorf("category = %v, want validation", out.Error().Category)
	}
}

func TestDispatch_PartialFailure_StillBlocksHandler(t *testing.T) {
	r := pipeline.NewRegistry()
	pipeline.Register(r, func(_ context.Context, c createCmd) *domain.Error { return nil })
	pipeline.Register(r, func(_ context.Context, c createCmd) *domain.Error {
		return domain.NewValidationError("BIO_TOO_SHORT", "B too short")
	})

	handled := 0
	out := pipeline.Dispatch(context.Background(), r, createCmd{Name: "ok"}, func(_ context.Context, c createCmd) result.Result[string] {
		handled++
		return result.Ok("created")
	})

	if handled != 0 {
		t.Fatal("handler ran despite a failing validator")
	}
	if got := out.Error().Message; got != "B too short" {
		t.Errorf("message = %q, want just the single failure", got)
	}
}

func TestDispatch_AllValidatorsPass_HandlerRuns(t *testing.T) {
	r := pipeline.NewRegistry()
	pipeline.Register(r, func(_ context.Context, c createCmd) *domain.Error { return nil })
	pipeline.Register(r, func(_ context.Context, c createCmd) *domain.Error { return nil })

	out := pipeline.Dispatch(context.Background(), r, createCmd{Name: "n", Bio: "bio"}, func(_ context.Context, c createCmd) result.Result[string] {
		return result.Ok("created " + c.Name)
	})

	if !out.IsOk() {
		t.Fatalf("unexpected failure: %v", out.Error())
	}
	if out.Value() != "created n" {
		t.Errorf("result = %q", out.Value())
	}
}

func TestDispatch_ValidatorsScopedByCommandType(t *testing.T) {
	r := pipeline.NewRegistry()
	pipeline.Register(r, func(_ context.Context, c createCmd) *domain.Error {
		return domain.NewValidationError("NOPE", "should not apply to otherCmd")
	})

	out := pipeline.Dispatch(context.Background(), r, otherCmd{N: 1}, func(_ context.Context, c otherCmd) result.Result[int] {
		return result.Ok(c.N)
	})

	if !out.IsOk() {
		t.Errorf("validator for createCmd leaked onto otherCmd: %v", out.Error())
	}
}

func TestDispatch_CanceledContext_SkipsValidatorsAndHandler(t *testing.T) {
	r := pipeline.NewRegistry()
	validated, handled := 0, 0
	pipeline.Register(r, func(_ context.Context, c createCmd) *domain.Error {
		validated++
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := pipeline.Dispatch(ctx, r, createCmd{}, func(_ context.Context, c createCmd) result.Result[string] {
		handled++
		return result.Ok("created")
	})

	if validated != 0 || handled != 0 {
		t.Errorf("canceled dispatch ran validators=%d handler=%d", validated, handled)
	}
	if out.IsOk() {
		t.Fatal("canceled dispatch produced success")
	}
	if out.Error().Code != "REQUEST_CANCELED" {
		t.Errorf("error code = %q", out.Error().Code)
	}
}
