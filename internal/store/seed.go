package store

import (
	"slices"
	"time"

	"studio/internal/model"
)

// Dataset is the full content of a store.
type Dataset struct {
	Students      []model.Student
	Teachers      []model.Teacher
	Logs          []model.DailyLog
	Announcements []model.Announcement
	Artworks      []model.Artwork
	Messages      []model.DirectMessage
}

// Clone deep-copies every collection.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		Students:      make([]model.Student, len(d.Students)),
		Teachers:      slices.Clone(d.Teachers),
		Logs:          make([]model.DailyLog, len(d.Logs)),
		Announcements: slices.Clone(d.Announcements),
		Artworks:      slices.Clone(d.Artworks),
		Messages:      slices.Clone(d.Messages),
	}
	for i, st := range d.Students {
		out.Students[i] = st.Clone()
	}
	for i, l := range d.Logs {
		out.Logs[i] = l.Clone()
	}
	return out
}

func mustTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		panic(err)
	}
	return t
}

// Seed returns the studio's initial dataset. Records shown as online are stamped with now.
func Seed(now time.Time) Dataset {
	now = now.UTC()
	return Dataset{
		Students: []model.Student{
			{
				ID:            "ST-2024-001",
				Name:          "Aarav Sharma",
				Age:           9,
				SchoolName:    "Greenwood High International",
				Address:       "42, Maple Avenue, Sector 12",
				AdmissionDate: "2024-01-15",
				CurrentLevel:  model.LevelThree,
				ProfileImage:  "https://picsum.photos/id/237/200/200",
				Schedule: []model.ClassSchedule{
					{Day: "Monday", Time: "4:00 PM - 5:30 PM", Subject: "Watercolors"},
					{Day: "Thursday", Time: "4:00 PM - 5:30 PM", Subject: "Sketching"},
				},
				IsOnline: true,
				LastSeen: now,
			},
			{
				ID:            "ST-2024-002",
				Name:          "Zara Khan",
				Age:           11,
				SchoolName:    "Metropolis High",
				Address:       "10, Creative Block, City Center",
				AdmissionDate: "2023-08-10",
				CurrentLevel:  model.LevelFive,
				ProfileImage:  "https://picsum.photos/id/1011/200/200",
				Schedule: []model.ClassSchedule{
					{Day: "Tuesday", Time: "5:00 PM - 6:30 PM", Subject: "Oil Pastels"},
					{Day: "Friday", Time: "5:00 PM - 6:30 PM", Subject: "Perspective"},
				},
				LastSeen: mustTime("2024-05-21T14:30:00.000Z"),
			},
			{
				ID:            "ST-2024-003",
				Name:          "Vihaan Gupta",
				Age:           7,
				SchoolName:    "Little Stars Academy",
				Address:       "5, River View, East End",
				AdmissionDate: "2024-03-01",
				CurrentLevel:  model.LevelOne,
				ProfileImage:  "https://picsum.photos/id/1005/200/200",
				Schedule: []model.ClassSchedule{
					{Day: "Wednesday", Time: "3:30 PM - 4:30 PM", Subject: "Finger Painting"},
					{Day: "Saturday", Time: "10:00 AM - 11:30 AM", Subject: "Crafts"},
				},
				LastSeen: mustTime("2024-05-20T09:00:00.000Z"),
			},
		},
		Teachers: []model.Teacher{
			{
				ID:              "T-001",
				Name:            "Kashmira Jha",
				Specialization:  "Fine Arts & Oil Painting",
				ProfileImage:    "https://picsum.photos/id/64/200/200",
				UpcomingClasses: 3,
				IsOnline:        true,
				LastSeen:        now,
			},
			{
				ID:              "T-002",
				Name:            "Rohan Das",
				Specialization:  "Sculpture & Pottery",
				ProfileImage:    "https://picsum.photos/id/91/200/200",
				UpcomingClasses: 2,
				LastSeen:        mustTime("2024-05-21T16:45:00.000Z"),
			},
			{
				ID:              "T-003",
				Name:            "Sarah Lee",
				Specialization:  "Watercolors & Landscapes",
				ProfileImage:    "https://picsum.photos/id/65/200/200",
				UpcomingClasses: 4,
				LastSeen:        mustTime("2024-05-21T10:15:00.000Z"),
			},
		},
		Logs: []model.DailyLog{
			{
				ID:                  "log-1",
				StudentIDs:          []string{"ST-2024-001"},
				Date:                "2024-05-20",
				EntryTime:           "04:00 PM",
				ExitTime:            "05:30 PM",
				ActivityTitle:       "Watercolor Landscapes",
				ActivityDescription: "Today we focused on the 'wet-on-wet' technique to create a soft sky background.",
				Homework:            "Observe the sunset colors today and write down 3 colors you see.",
				MediaURLs:           []string{"https://picsum.photos/id/10/400/300", "https://picsum.photos/id/11/400/300"},
			},
			{
				ID:                  "log-2",
				StudentIDs:          []string{"ST-2024-001", "ST-2024-003"},
				Date:                "2024-05-18",
				EntryTime:           "04:00 PM",
				ExitTime:            "05:30 PM",
				ActivityTitle:       "Tree Textures",
				ActivityDescription: "Learning how to use a dry brush to create rough bark textures.",
				Homework:            "Collect a real leaf and bring it to the next class.",
				MediaURLs:           []string{"https://picsum.photos/id/12/400/300", "https://www.w3schools.com/html/mov_bbb.mp4"},
			},
		},
		Announcements: []model.Announcement{
			{
				ID:       "A1",
				Title:    "Annual Art Exhibition",
				Date:     "2024-06-15",
				Content:  "Submissions for the summer gala are due by Friday. Please ensure canvases are framed.",
				Priority: model.PriorityHigh,
			},
			{
				ID:       "A2",
				Title:    "Holiday Closure",
				Date:     "2024-05-28",
				Content:  "The studio will be closed this Monday for maintenance.",
				Priority: model.PriorityLow,
				Read:     true,
			},
		},
		Artworks: []model.Artwork{
			{
				ID:          "ART-001",
				StudentID:   "ST-2024-001",
				Title:       "Sunset over Hills",
				Description: "Watercolor study focusing on warm gradients.",
				ImageURL:    "https://picsum.photos/id/1015/600/600",
				Date:        "2024-05-10",
			},
			{
				ID:          "ART-002",
				StudentID:   "ST-2024-001",
				Title:       "Fruit Basket",
				Description: "Still life composition using oil pastels.",
				ImageURL:    "https://picsum.photos/id/1080/600/600",
				Date:        "2024-04-22",
			},
		},
		Messages: []model.DirectMessage{
			{
				ID:         "m1",
				SenderID:   "ST-2024-001",
				ReceiverID: "T-001",
				Content:    "Hi Ms. Kashmira, Aarav will be 10 mins late today.",
				Timestamp:  mustTime("2024-05-21T15:30:00.000Z"),
				Read:       true,
			},
			{
				ID:         "m2",
				SenderID:   "T-001",
				ReceiverID: "ST-2024-001",
				Content:    "No problem, thanks for letting me know! We are starting with sketching today.",
				Timestamp:  mustTime("2024-05-21T15:32:00.000Z"),
				Read:       true,
			},
		},
	}
}

var syllabus = []model.SyllabusItem{
	{
		Level:       model.LevelOne,
		Title:       "Foundations of Fun",
		Description: "Introduction to holding brushes, primary colors, and basic shapes.",
		Modules:     []string{"Grip Techniques", "Circle, Square, Triangle", "Primary Colors (Red, Blue, Yellow)", "Finger Painting"},
	},
	{
		Level:       model.LevelTwo,
		Title:       "World of Lines",
		Description: "Exploring line weights, patterns, and basic object drawing.",
		Modules:     []string{"Straight vs Curved", "Pattern Making", "Drawing Fruits", "Color Mixing (Secondary Colors)"},
	},
	{
		Level:       model.LevelThree,
		Title:       "Nature & Observations",
		Description: "Looking at nature, drawing leaves, flowers, and simple landscapes.",
		Modules:     []string{"Leaf Anatomy", "Flower Petals", "Simple Trees", "Introduction to Watercolors"},
	},
	{
		Level:       model.LevelFour,
		Title:       "Animals & Animation",
		Description: "Basic anatomy of animals and creating simple characters.",
		Modules:     []string{"Stick Figures in Action", "Animal Faces", "Cartoon Basics", "Pastel Shades"},
	},
	{
		Level:       model.LevelFive,
		Title:       "Perspective & Depth",
		Description: "Understanding near vs far, 1-point perspective.",
		Modules:     []string{"1-Point Perspective", "Shadows and Light", "Cityscapes", "Oil Pastels Blending"},
	},
	{
		Level:       model.LevelSix,
		Title:       "Portraits & Expressions",
		Description: "Human face proportions and emotional expression.",
		Modules:     []string{"Face Proportions", "Eye and Nose Detail", "Expressions", "Acrylic Basics"},
	},
	{
		Level:       model.LevelSeven,
		Title:       "Masterpiece & Reflection",
		Description: "Complex compositions, sharing 7-year experiences, and planning the next artistic journey.",
		Modules:     []string{"Advanced Composition", "Canvas Painting", "Experience Sharing Session", "Future Roadmap & New Sessions"},
	},
}

var gallery = []model.GalleryItem{
	{URL: "https://picsum.photos/id/1015/800/600", Title: "Valley Sunset", Date: "May 2024"},
	{URL: "https://picsum.photos/id/1016/800/600", Title: "Canyon Echoes", Date: "April 2024"},
	{URL: "https://picsum.photos/id/1018/800/600", Title: "Mountain High", Date: "March 2024"},
	{URL: "https://picsum.photos/id/1019/800/600", Title: "Ocean Breeze", Date: "June 2024"},
	{URL: "https://picsum.photos/id/1025/800/600", Title: "Winter Solstice", Date: "December 2023"},
	{URL: "https://picsum.photos/id/1040/800/600", Title: "Castle Dreams", Date: "February 2024"},
}

// Syllabus returns the seven-level curriculum.
func Syllabus() []model.SyllabusItem {
	out := make([]model.SyllabusItem, len(syllabus))
	for i, it := range syllabus {
		it.Modules = slices.Clone(it.Modules)
		out[i] = it
	}
	return out
}

// Gallery returns the public showcase images.
func Gallery() []model.GalleryItem {
	return slices.Clone(gallery)
}
