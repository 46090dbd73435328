package action

import (
	"github.com/linknx-go/ruled/engine"
	"github.com/linknx-go/ruled/engine/traits"
)

func init() {
	engine.RegisterAction("send-sms", func() engine.Action { return &SendSms{} })
	engine.RegisterAction("send-email", func() engine.Action { return &SendEmail{} })
	engine.RegisterAction("shell-cmd", func() engine.Action { return &ShellCommand{} })
	engine.RegisterAction("tx", func() engine.Action { return &Tx{} })
}

// SendSms dispatches a text message through the configured SMS gateway.
type SendSms struct {
	traits.Kinded
	traits.Delayed

	To   string
	Text string
}

func (a *SendSms) Configure(node engine.Node, ctx *engine.ActionContext) error {
	delay, err := parseDelay(node)
	if err != nil {
		return err
	}
	a.SetDelay(delay)

	to, ok := node.Attr("id")
	if !ok {
		return engine.NewConfigError("send-sms: missing id attribute")
	}
	text, ok := node.Attr("value")
	if !ok {
		return engine.NewConfigError("send-sms: missing value attribute")
	}
	a.To, a.Text = to, text
	return nil
}

func (a *SendSms) Serialize(node engine.MutableNode) {
	node.SetAttr("id", a.To)
	node.SetAttr("value", a.Text)
}

func (a *SendSms) Run(ctx *engine.ActionContext, stop <-chan struct{}) {
	if !runDelay(a.Delay(), stop) {
		return
	}
	if ctx.Gateways.SMS == nil {
		ctx.Logf("send-sms: %v", &engine.RuntimeGatewayError{Err: errNoGateway("sms")})
		return
	}
	if err := ctx.Gateways.SMS.SendSms(a.To, a.Text); err != nil {
		ctx.Logf("send-sms: %v", &engine.RuntimeGatewayError{Err: err})
	}
}

// SendEmail dispatches an email through the configured email gateway.
type SendEmail struct {
	traits.Kinded
	traits.Delayed

	To      string
	Subject string
	Body    string
}

func (a *SendEmail) Configure(node engine.Node, ctx *engine.ActionContext) error {
	delay, err := parseDelay(node)
	if err != nil {
		return err
	}
	a.SetDelay(delay)

	to, ok := node.Attr("to")
	if !ok {
		return engine.NewConfigError("send-email: missing to attribute")
	}
	subject, _ := node.Attr("subject")
	a.To, a.Subject, a.Body = to, subject, node.Text()
	return nil
}

func (a *SendEmail) Serialize(node engine.MutableNode) {
	node.SetAttr("to", a.To)
	node.SetAttr("subject", a.Subject)
	node.SetText(a.Body)
}

func (a *SendEmail) Run(ctx *engine.ActionContext, stop <-chan struct{}) {
	if !runDelay(a.Delay(), stop) {
		return
	}
	if ctx.Gateways.Email == nil {
		ctx.Logf("send-email: %v", &engine.RuntimeGatewayError{Err: errNoGateway("email")})
		return
	}
	if err := ctx.Gateways.Email.SendEmail(a.To, a.Subject, a.Body); err != nil {
		ctx.Logf("send-email: %v", &engine.RuntimeGatewayError{Err: err})
	}
}

// ShellCommand runs an external command through the configured shell
// executor. A non-zero exit is logged, not fatal.
type ShellCommand struct {
	traits.Kinded
	traits.Delayed

	Cmd string
}

func (a *ShellCommand) Configure(node engine.Node, ctx *engine.ActionContext) error {
	delay, err := parseDelay(node)
	if err != nil {
		return err
	}
	a.SetDelay(delay)

	cmd, ok := node.Attr("cmd")
	if !ok {
		return engine.NewConfigError("shell-cmd: missing cmd attribute")
	}
	a.Cmd = cmd
	return nil
}

func (a *ShellCommand) Serialize(node engine.MutableNode) {
	node.SetAttr("cmd", a.Cmd)
}

func (a *ShellCommand) Run(ctx *engine.ActionContext, stop <-chan struct{}) {
	if !runDelay(a.Delay(), stop) {
		return
	}
	if ctx.Gateways.Shell == nil {
		ctx.Logf("shell-cmd: %v", &engine.RuntimeGatewayError{Err: errNoGateway("shell")})
		return
	}
	if _, err := ctx.Gateways.Shell.Run(a.Cmd); err != nil {
		ctx.Logf("shell-cmd: %v", &engine.RuntimeGatewayError{Err: err})
	}
}

// Tx writes a literal value, parsed once at configure time, to an object
// through its SetValue. No source address is attached to the write, and the
// object's change listeners fire as for any other write. Thin dispatcher to
// the object registry, mirroring linknx's TransmitAction.
type Tx struct {
	traits.Kinded
	traits.Delayed

	Object  engine.Object
	literal string
	Value   engine.ObjectValue
}

func (a *Tx) Configure(node engine.Node, ctx *engine.ActionContext) error {
	delay, err := parseDelay(node)
	if err != nil {
		return err
	}
	a.SetDelay(delay)

	id, ok := node.Attr("id")
	if !ok {
		return engine.NewConfigError("tx: missing id attribute")
	}
	obj, err := ctx.Objects.GetObject(id)
	if err != nil {
		return err
	}
	a.Object = obj

	lit, ok := node.Attr("value")
	if !ok {
		return engine.NewConfigError("tx: missing value attribute")
	}
	v, err := obj.CreateValue(lit)
	if err != nil {
		return engine.NewConfigError("tx: bad value %q: %v", lit, err)
	}
	a.literal = lit
	a.Value = v
	return nil
}

func (a *Tx) Serialize(node engine.MutableNode) {
	node.SetAttr("id", a.Object.ID())
	node.SetAttr("value", a.literal)
}

func (a *Tx) Run(ctx *engine.ActionContext, stop <-chan struct{}) {
	if !runDelay(a.Delay(), stop) {
		return
	}
	if err := a.Object.SetValue(a.Value); err != nil {
		ctx.Logf("tx: %v", &engine.RuntimeGatewayError{Err: err})
	}
}

type gatewayNotConfiguredError string

func (e gatewayNotConfiguredError) Error() string {
	return "no " + string(e) + " gateway configured"
}

func errNoGateway(kind string) error {
	return gatewayNotConfiguredError(kind)
}

var (
	_ engine.Action = (*SendSms)(nil)
	_ engine.Action = (*SendEmail)(nil)
	_ engine.Action = (*ShellCommand)(nil)
	_ engine.Action = (*Tx)(nil)
)
