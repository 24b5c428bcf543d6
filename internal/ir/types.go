package ir

// OutputSuccess is the output case of a completion that produced a result.
const OutputSuccess = "Success"

// Invocation records one request to run an operation.
type Invocation struct {
	ID            string   `json:"id"` // content-addressed
	SessionToken  string   `json:"session_token"`
	Op            string   `json:"op"`
	Args          IRObject `json:"args"`
	Seq           int64    `json:"seq"`
	EngineVersion string   `json:"engine_version"`
	IRVersion     string   `json:"ir_version"`
}

// Completion records the outcome of an invocation.
//
// OutputCase is OutputSuccess or the PascalCase name of a calculation
// error; Result then holds {code, message}.
type Completion struct {
	ID           string   `json:"id"` // content-addressed
	InvocationID string   `json:"invocation_id"`
	OutputCase   string   `json:"output_case"`
	Result       IRObject `json:"result"`
	Seq          int64    `json:"seq"`
}

// Succeeded reports whether c carries a result rather than an error.
func (c Completion) Succeeded() bool {
	return c.OutputCase == OutputSuccess
}
