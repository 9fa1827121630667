package ports

// Notifier surfaces user-visible success messages.
type Notifier interface {
	Success(message string)
}

type NopNotifier struct{}

func (NopNotifier) Success(string) {}
