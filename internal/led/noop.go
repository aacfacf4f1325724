package led

import "log/slog"

// noop accepts every call and drives nothing.
type noop struct {
	logger *slog.Logger
}

func newNoop(logger *slog.Logger) *noop {
	return &noop{logger: logger}
}

func (n *noop) Init(ch Channel) error {
	n.logger.Debug("LED init ignored (no-op)", "channel", ch)
	return nil
}

func (n *noop) Set(ch Channel, on bool) error {
	n.logger.Debug("LED control not available (no-op)", "channel", ch, "on", on)
	return nil
}

func (n *noop) Available() []Channel {
	return []Channel{}
}
