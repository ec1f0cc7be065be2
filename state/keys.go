package state

var (
	KeyRoles        = "roles"
	KeyParams       = "params"
	KeySchema       = "schema"
	KeyPopulation   = "pop"
	KeyMember       = "m%x"
	KeyHuman        = "hm%x"
	KeyOracle       = "oracle"
	KeySeat         = "seat%d"
	KeyTally        = "t%d"
	KeyTallyIndex   = "ti"
	KeyTallyOf      = "tp%d"
	KeyOpenTallies  = "topen"
	KeyVote         = "v%d/%x"
	KeyProposal     = "p%d"
	KeyProposalIdx  = "pi"
	KeyTransaction  = "x%d"
	KeyTxIndex      = "xi"
	KeyRewards      = "r%x"
	KeyIncentives   = "inc"
	KeyGenesisState = "genesis"
)
