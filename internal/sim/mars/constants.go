package mars

// Behavior thresholds shared by the agent state machines. Battery and energy
// are percentages clamped to [0,100].
const (
	DefaultBatteryLife               = 100
	DefaultBatteryConsumptionPerMove = 5

	// Rover thresholds.
	LowBatteryThreshold    = 30 // below this a rover heads home
	ChargeRequestThreshold = 50 // below this an adjacent rover asks the craft to charge
	BatteryShareAmount     = 5  // fixed transfer to a stalled neighbor
	BatteryShareMinimum    = 30 // a helper must hold more than this to share
	ChargeAmountPerTurn    = 5  // craft-side charging rate

	// Alien thresholds.
	DefaultEnergy        = 100
	AlienMoveCost        = 5
	AttackDamage         = 25
	AttackEnergyCost     = 20
	HibernateThreshold   = 20 // at or below this after an attack, the alien hibernates
	HibernateRegen       = 10
	SpacecraftFleeRadius = 4 // Manhattan; inside it the alien always flees
	RoverDetectRadius    = 3 // Manhattan; scan range for victims
	MaxChaseMoves        = 3

	// Spacecraft coordination.
	TeamDispatchDistance = 7   // beyond this Manhattan distance a team is needed
	SpawnRockCost        = 100 // retrieved rocks consumed per new rover
)
