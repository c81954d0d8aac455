package handlers

// Archetype names and name patterns.
const (
	gameEventPrefix     = "Archetypes.GameEvent.GameEvent_"
	boostPadMarker      = "TheWorld:PersistentLevel.VehiclePickup_Boost_TA"
	gameInfoSuffix      = ":GameReplicationInfoArchetype"
	specialPickupPrefix = "Archetypes.SpecialPickups.SpecialPickup_"
	platformPrefix      = "ShatterShot_VFX.TheWorld:PersistentLevel.BreakOutActor_Platform_TA_"

	ArchBallDefault    = "Archetypes.Ball.Ball_Default"
	ArchBallBasketball = "Archetypes.Ball.Ball_Basketball"
	ArchBallBasketBall = "Archetypes.Ball.Ball_BasketBall"
	ArchBallPuck       = "Archetypes.Ball.Ball_Puck"
	ArchBallCube       = "Archetypes.Ball.CubeBall"
	ArchBallBreakout   = "Archetypes.Ball.Ball_Breakout"
	ArchPlayer         = "TAGame.Default__PRI_TA"
	ArchCar            = "Archetypes.Car.Car_Default"
	ArchCamera         = "TAGame.Default__CameraSettingsActor_TA"
	ArchJump           = "Archetypes.CarComponents.CarComponent_Jump"
	ArchDoubleJump     = "Archetypes.CarComponents.CarComponent_DoubleJump"
	ArchDodge          = "Archetypes.CarComponents.CarComponent_Dodge"
	ArchBoost          = "Archetypes.CarComponents.CarComponent_Boost"
	ArchTeam0          = "Archetypes.Teams.Team0"
	ArchTeam1          = "Archetypes.Teams.Team1"
)

// Attribute names, as they appear in the object table.
const (
	AttrRBState      = "TAGame.RBActor_TA:ReplicatedRBState"
	AttrPawnPRI      = "Engine.Pawn:PlayerReplicationInfo"
	AttrThrottle     = "TAGame.Vehicle_TA:ReplicatedThrottle"
	AttrSteer        = "TAGame.Vehicle_TA:ReplicatedSteer"
	AttrHandbrake    = "TAGame.Vehicle_TA:bReplicatedHandbrake"
	AttrDemolish     = "TAGame.Car_TA:ReplicatedDemolish"
	AttrTeamPaint    = "TAGame.Car_TA:TeamPaint"
	AttrVehicle      = "TAGame.CarComponent_TA:Vehicle"
	AttrActive       = "TAGame.CarComponent_TA:ReplicatedActive"
	AttrBoostAmount  = "TAGame.CarComponent_Boost_TA:ReplicatedBoostAmount"
	AttrBoostStruct  = "TAGame.CarComponent_Boost_TA:ReplicatedBoost"
	AttrPickup       = "TAGame.VehiclePickup_TA:ReplicatedPickupData"
	AttrPickupNew    = "TAGame.VehiclePickup_TA:NewReplicatedPickupData"
	AttrTeam         = "Engine.PlayerReplicationInfo:Team"
	AttrPlayerName   = "Engine.PlayerReplicationInfo:PlayerName"
	AttrUniqueID     = "Engine.PlayerReplicationInfo:UniqueId"
	AttrPing         = "Engine.PlayerReplicationInfo:Ping"
	AttrTimeTillItem = "TAGame.PRI_TA:TimeTillItem"
	AttrPartyLeader  = "TAGame.PRI_TA:PartyLeader"
	AttrMatchScore   = "TAGame.PRI_TA:MatchScore"
	AttrMatchGoals   = "TAGame.PRI_TA:MatchGoals"
	AttrMatchAssists = "TAGame.PRI_TA:MatchAssists"
	AttrMatchSaves   = "TAGame.PRI_TA:MatchSaves"
	AttrMatchShots   = "TAGame.PRI_TA:MatchShots"
	AttrTitle        = "TAGame.PRI_TA:Title"
	AttrTotalXP      = "TAGame.PRI_TA:TotalXP"
	AttrSteering     = "TAGame.PRI_TA:SteeringSensitivity"
	AttrCameraPRI    = "TAGame.CameraSettingsActor_TA:PRI"
	AttrBallCam      = "TAGame.CameraSettingsActor_TA:bUsingSecondaryCamera"
	AttrCamSettings  = "TAGame.CameraSettingsActor_TA:ProfileSettings"
	AttrTeamName     = "TAGame.Team_TA:CustomTeamName"
	AttrTeamScore    = "Engine.TeamInfo:Score"
	AttrHitTeam      = "TAGame.Ball_TA:HitTeamNum"
	AttrDamageIndex  = "TAGame.Ball_Breakout_TA:DamageIndex"
	AttrLastTeam     = "TAGame.Ball_Breakout_TA:LastTeamTouch"
	AttrDamageState  = "TAGame.BreakOutActor_Platform_TA:DamageState"
	AttrOvertime     = "TAGame.GameEvent_Soccar_TA:bOverTime"
	AttrSecondsLeft  = "TAGame.GameEvent_Soccar_TA:SecondsRemaining"
	AttrCountdown    = "TAGame.GameEvent_TA:ReplicatedGameStateTimeRemaining"
	AttrBallHit      = "TAGame.GameEvent_Soccar_TA:bBallHasBeenHit"
	AttrServerID     = "ProjectX.GRI_X:GameServerID"
	AttrServerName   = "Engine.GameReplicationInfo:ServerName"
	AttrMatchGUID    = "ProjectX.GRI_X:MatchGUID"
	AttrPlaylist     = "ProjectX.GRI_X:ReplicatedGamePlaylist"
	AttrMutatorIndex = "ProjectX.GRI_X:ReplicatedGameMutatorIndex"
)
