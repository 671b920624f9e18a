package form

import (
	"github.com/jhoicas/Documentos-api/pkg/logger"
)

// Severity gravedad de un aviso al usuario.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "info"
}

// Notice aviso visible para el usuario. Action es la clave de la acción que lo originó.
type Notice struct {
	Severity Severity
	Action   string
	Message  string
	Err      error
}

// Notifier muestra avisos (toasts) al usuario.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapta una función a Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// LogNotifier escribe los avisos en el log; útil en la CLI y en procesos sin UI.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.Component("form")}
}

func (n *LogNotifier) Notify(notice Notice) {
	ev := n.log.Info()
	switch notice.Severity {
	case SeverityWarning:
		ev = n.log.Warn()
	case SeverityError:
		ev = n.log.Error()
	}
	if notice.Err != nil {
		ev = ev.Err(notice.Err)
	}
	ev.Str("action", notice.Action).Msg(notice.Message)
}
