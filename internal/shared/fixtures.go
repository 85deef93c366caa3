package shared

// Seed catalog for a fresh install. Categories carry their equipment by
// item name; rooms reference categories by position in SeedCategories.

type SeedCategory struct {
	Name        string
	Price       float64
	Description string
	Items       []string
}

type SeedRoom struct {
	Floor     int
	RoomCount int
	BedCount  int
	Category  int // index into SeedCategories
	Available bool
}

type SeedService struct {
	Name        string
	Price       float64
	Description string
	Active      bool
}

var SeedCategories = []SeedCategory{
	{Name: "Standard", Price: 80, Description: "One-room standard", Items: []string{"TV", "Fridge"}},
	{Name: "Comfort", Price: 120, Description: "Standard with a workspace", Items: []string{"TV", "Fridge", "Desk"}},
	{Name: "Family", Price: 160, Description: "Two rooms, kitchenette", Items: []string{"TV", "Fridge", "Kitchenette"}},
	{Name: "Lux", Price: 280, Description: "Suite with a lounge area", Items: []string{"TV", "Fridge", "Desk", "Minibar", "Safe"}},
}

var SeedRooms = []SeedRoom{
	{Floor: 2, RoomCount: 1, BedCount: 1, Category: 0, Available: true},
	{Floor: 2, RoomCount: 1, BedCount: 2, Category: 0, Available: true},
	{Floor: 3, RoomCount: 1, BedCount: 2, Category: 1, Available: true},
	{Floor: 3, RoomCount: 2, BedCount: 3, Category: 2, Available: true},
	{Floor: 4, RoomCount: 2, BedCount: 4, Category: 2, Available: false},
	{Floor: 5, RoomCount: 3, BedCount: 2, Category: 3, Available: true},
}

var SeedServices = []SeedService{
	{Name: "Breakfast", Price: 12, Description: "Buffet breakfast", Active: true},
	{Name: "Spa", Price: 45, Description: "Spa and sauna access", Active: true},
	{Name: "Laundry", Price: 8, Description: "Same-day laundry", Active: true},
	{Name: "Airport transfer", Price: 30, Description: "Car transfer to the airport", Active: true},
	{Name: "Telegraph", Price: 2, Description: "Discontinued", Active: false},
}
