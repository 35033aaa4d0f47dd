package domain

type Client struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Type   string `json:"type"`
	Status string `json:"status"`
	Cases  int    `json:"cases"`
}

type Case struct {
	ID                  string `json:"id"`
	Number              string `json:"number"`
	Title               string `json:"title"`
	Client              string `json:"client"`
	Type                string `json:"type"`
	Status              string `json:"status"`
	NextDeadline        string `json:"next_deadline"`
	ResponsibleAttorney string `json:"responsible_attorney"`
}

type Task struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Due      string `json:"due"`
	Priority string `json:"priority"`
	Done     bool   `json:"done"`
}

type StatTrend struct {
	Value      int  `json:"value"`
	IsPositive bool `json:"is_positive"`
}

type Stat struct {
	Title string    `json:"title"`
	Value string    `json:"value"`
	Trend StatTrend `json:"trend"`
}

type DashboardSummary struct {
	Stats []Stat `json:"stats"`
	Tasks []Task `json:"tasks"`
}
