package wallet

// Recorder receives the outcome of wallet operations, typically for metrics.
type Recorder interface {
	ProbeCompleted(connectorID string, ready bool)
	ConnectCompleted(connectorID string, err error)
	SwitchCompleted(chainID uint64, err error)
}

type nopRecorder struct{}

func (nopRecorder) ProbeCompleted(string, bool) {}
func (nopRecorder) ConnectCompleted(string, error) {}
func (nopRecorder) SwitchCompleted(uint64, error) {}
