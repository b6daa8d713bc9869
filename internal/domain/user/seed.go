package user

import "time"

func strPtr(s string) *string { return &s }

// DemoUsers returns the records the directory starts with when demo data is enabled.
func DemoUsers() []User {
	return []User{
		{
			ID:       "1",
			Name:     "John Doe",
			Email:    "john@example.com",
			Phone:    strPtr("+1 (555) 123-4567"),
			Role:     RoleAdmin,
			Status:   StatusActive,
			JoinDate: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:       "2",
			Name:     "Sarah Wilson",
			Email:    "sarah@example.com",
			Phone:    strPtr("+1 (555) 987-6543"),
			Role:     RoleUser,
			Status:   StatusActive,
			JoinDate: time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:       "3",
			Name:     "Mike Johnson",
			Email:    "mike@example.com",
			Role:     RoleModerator,
			Status:   StatusInactive,
			JoinDate: time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:       "4",
			Name:     "Emily Davis",
			Email:    "emily@example.com",
			Phone:    strPtr("+1 (555) 456-7890"),
			Role:     RoleUser,
			Status:   StatusPending,
			JoinDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}
