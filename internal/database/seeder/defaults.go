package seeder

// DemoPassword is shared by every seeded account.
const DemoPassword = "demo-password"

func Defaults() []Seeder {
	return []Seeder{
		AccountsSeeder{},
		ListingsSeeder{},
	}
}
