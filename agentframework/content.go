// Copyright (c) Microsoft. All rights reserved.

package agentframework

// ContentType is the "$type" discriminator of a [Content] item.
type ContentType string

const (
	ContentTypeText           ContentType = "text"
	ContentTypeError          ContentType = "error"
	ContentTypeFunctionCall   ContentType = "functionCall"
	ContentTypeFunctionResult ContentType = "functionResult"
	ContentTypeUsage          ContentType = "usage"
)

// Content is one item of a [Message]. The set of implementations is closed;
// inspect them with a type switch.
type Content interface {
	Type() ContentType
	sealed()
}

type sealedContent struct{}

func (sealedContent) sealed() {}

// TextContent is plain text written by the user, the model or the system.
type TextContent struct {
	sealedContent
	Text string
}

// ErrorContent records a failure inside the conversation, such as a tool
// call that could not be dispatched. Providers do not send it to the model.
type ErrorContent struct {
	sealedContent
	Message   string
	ErrorCode string
}

// FunctionCallContent is a tool call requested by the model. Arguments is
// the raw JSON object the model produced.
type FunctionCallContent struct {
	sealedContent
	CallID    string
	Name      string
	Arguments string
}

// FunctionResultContent answers the FunctionCallContent with the same CallID.
type FunctionResultContent struct {
	sealedContent
	CallID string
	Result any
}

// UsageContent carries the token usage of the response it belongs to.
type UsageContent struct {
	sealedContent
	Usage UsageDetails
}

func (*TextContent) Type() ContentType           { return ContentTypeText }
func (*ErrorContent) Type() ContentType          { return ContentTypeError }
func (*FunctionCallContent) Type() ContentType   { return ContentTypeFunctionCall }
func (*FunctionResultContent) Type() ContentType { return ContentTypeFunctionResult }
func (*UsageContent) Type() ContentType          { return ContentTypeUsage }
