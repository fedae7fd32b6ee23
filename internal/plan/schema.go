package plan

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
)

// loadSchema compiles the embedded schema once per process.
func loadSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile plan schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#Plan"))
		if !schemaDef.Exists() {
			schemaErr = fmt.Errorf("plan schema has no #Plan definition")
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// validate checks the decoded document against #Plan.
func validate(doc map[string]any) error {
	ctx, def, err := loadSchema()
	if err != nil {
		return err
	}

	// cue.Context is not safe for concurrent use.
	schemaMu.Lock()
	defer schemaMu.Unlock()

	data := ctx.Encode(doc)
	if err := data.Err(); err != nil {
		return &Error{Code: ErrCodeSchemaViolation, Message: "encode document", Err: err}
	}

	unified := def.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &Error{Code: ErrCodeSchemaViolation, Message: firstCUEError(err)}
	}
	return nil
}

var schemaMu sync.Mutex

// firstCUEError flattens a CUE error list to its first message.
func firstCUEError(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	msg := errs[0].Error()
	if len(errs) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(errs)-1)
	}
	return msg
}
