package engine

// DefaultPool is the cricket player pool every new room starts from.
var DefaultPool = []string{
	"Virat Kohli",
	"Rohit Sharma",
	"MS Dhoni",
	"Hardik Pandya",
	"Jasprit Bumrah",
	"KL Rahul",
	"Rishabh Pant",
	"Ravindra Jadeja",
	"Mohammed Shami",
	"Yuzvendra Chahal",
	"Shikhar Dhawan",
	"Bhuvneshwar Kumar",
	"Dinesh Karthik",
	"Shreyas Iyer",
	"Ishan Kishan",
	"Axar Patel",
	"Deepak Chahar",
	"Suryakumar Yadav",
	"Washington Sundar",
	"Shardul Thakur",
}
