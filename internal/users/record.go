package users

// Record is one user entity as returned by the remote endpoint. Records are
// treated as immutable once decoded.
type Record struct {
	ID       int     `json:"id" toml:"id"`
	Name     string  `json:"name" toml:"name"`
	Username string  `json:"username" toml:"username"`
	Email    string  `json:"email" toml:"email"`
	Address  Address `json:"address" toml:"address"`
	Phone    string  `json:"phone" toml:"phone"`
	Website  string  `json:"website" toml:"website"`
	Company  Company `json:"company" toml:"company"`
}

type Address struct {
	Street  string `json:"street" toml:"street"`
	Suite   string `json:"suite" toml:"suite"`
	City    string `json:"city" toml:"city"`
	Zipcode string `json:"zipcode" toml:"zipcode"`
}

type Company struct {
	Name string `json:"name" toml:"name"`
}
