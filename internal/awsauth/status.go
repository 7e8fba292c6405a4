package awsauth

import (
	"emperror.dev/errors"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// ResponseStatus returns the HTTP status of the response carried by err.
// ok is false when the request never got a response (send failure, timeout,
// cancelled context), which callers treat as a transport exception.
//
// The SDK wraps send failures in a ResponseError with a zero status, so a
// RequestSendError anywhere in the chain or a status that is not positive
// means there was no response.
func ResponseStatus(err error) (status int, ok bool) {
	var sendErr *smithyhttp.RequestSendError
	if errors.As(err, &sendErr) {
		return 0, false
	}

	var re interface{ HTTPStatusCode() int }
	if !errors.As(err, &re) {
		return 0, false
	}
	if status = re.HTTPStatusCode(); status <= 0 {
		return 0, false
	}
	return status, true
}

// ResultStatus returns the raw HTTP status recorded in an operation's result metadata.
func ResultStatus(md middleware.Metadata) (status int, ok bool) {
	resp, isHTTP := awsmiddleware.GetRawResponse(md).(*smithyhttp.Response)
	if !isHTTP || resp == nil || resp.Response == nil {
		return 0, false
	}
	return resp.StatusCode, true
}
