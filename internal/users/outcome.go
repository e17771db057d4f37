package users

import "fmt"

// Kind classifies the result of one fetch attempt.
type Kind int

const (
	KindSuccess Kind = iota
	KindHTTPError
	KindNetworkError
	KindParseError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindHTTPError:
		return "http_error"
	case KindNetworkError:
		return "network_error"
	case KindParseError:
		return "parse_error"
	default:
		return "unknown"
	}
}

const (
	MsgNotFound     = "404: Users data not found"
	MsgServerError  = "500: Internal server error"
	MsgNetworkError = "Network error: Please check your internet connection"
)

// Outcome is the classified result of a single fetch. It is produced once per
// attempt and consumed immediately.
type Outcome struct {
	Kind       Kind
	Records    []Record
	StatusCode int
	Message    string
	Err        error
}

func Success(records []Record) Outcome {
	if records == nil {
		records = []Record{}
	}
	return Outcome{Kind: KindSuccess, Records: records}
}

// HTTPFailure builds the outcome for a non-2xx response.
func HTTPFailure(statusCode int) Outcome {
	return Outcome{
		Kind:       KindHTTPError,
		StatusCode: statusCode,
		Message:    httpMessage(statusCode),
		Err:        fmt.Errorf("HTTP error: %d", statusCode),
	}
}

func NetworkFailure(err error) Outcome {
	return Outcome{Kind: KindNetworkError, Message: MsgNetworkError, Err: err}
}

func ParseFailure(err error) Outcome {
	return Outcome{Kind: KindParseError, Message: fmt.Sprintf("Parse error: %v", err), Err: err}
}

func httpMessage(statusCode int) string {
	switch statusCode {
	case 404:
		return MsgNotFound
	case 500:
		return MsgServerError
	default:
		return fmt.Sprintf("Server error: HTTP Error: %d", statusCode)
	}
}

func (o Outcome) OK() bool { return o.Kind == KindSuccess }

// AsError returns nil for a success, otherwise a *FetchError carrying the
// classification.
func (o Outcome) AsError() error {
	if o.OK() {
		return nil
	}
	return &FetchError{Kind: o.Kind, StatusCode: o.StatusCode, Message: o.Message, Err: o.Err}
}

// FetchError is an error outcome used where a plain error is expected.
type FetchError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string { return e.Message }

func (e *FetchError) Unwrap() error { return e.Err }
