package mockdata

// Nationalities — справочник национальностей для генерации.
var Nationalities = []string{
	"American", "British", "Canadian", "Australian", "German",
	"French", "Italian", "Spanish", "Portuguese", "Dutch",
	"Swedish", "Norwegian", "Danish", "Finnish", "Polish",
	"Czech", "Greek", "Turkish", "Brazilian", "Mexican",
	"Argentinian", "Japanese", "Chinese", "Korean", "Indian",
	"Egyptian", "Nigerian", "Kenyan", "Emirati", "Irish",
}

// Hobbies — справочник хобби для генерации.
var Hobbies = []string{
	"Reading", "Cycling", "Swimming", "Yoga", "Cooking",
	"Painting", "Photography", "Hiking", "Running", "Gardening",
	"Chess", "Gaming", "Dancing", "Singing", "Fishing",
	"Traveling", "Writing", "Knitting", "Skiing", "Surfing",
	"Climbing", "Camping", "Baking", "Woodworking", "Astronomy",
	"Birdwatching", "Tennis", "Football", "Basketball", "Volunteering",
}
