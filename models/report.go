package models

type CategoryTotal struct {
	Category Category `json:"category"`
	Total    int64    `json:"total"`
	Count    int      `json:"count"`
}

// TransactionReport is the backend's monthly aggregate for one user.
type TransactionReport struct {
	Month             string          `json:"date"`
	TotalPrice        int64           `json:"totalPrice"`
	OverExpensePrice  int64           `json:"overExpensePrice"`
	FixedExpensePrice int64           `json:"fixedExpensePrice"`
	TransactionCount  int             `json:"transactionCount"`
	Categories        []CategoryTotal `json:"categories"`
}

// AlarmInput asks the backend to push an overspend alarm to the user's
// devices.
type AlarmInput struct {
	Price   int64  `json:"price"`
	Message string `json:"message,omitempty"`
}
