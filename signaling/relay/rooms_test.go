package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/kowshik-thatinati/privacy-calls/signaling"
)

type RoomDirectorySuite struct {
	suite.Suite
	dir *roomDirectory
	reg *connRegistry
	now time.Time
}

func TestRoomDirectorySuite(t *testing.T) {
	suite.Run(t, new(RoomDirectorySuite))
}

func (s *RoomDirectorySuite) SetupTest() {
	s.dir = newRoomDirectory()
	s.reg = newConnRegistry()
	s.now = time.Unix(1_700_000_000, 0).UTC()
}

func (s *RoomDirectorySuite) register(connID, userID, userName, roomID string) {
	s.reg.register(connID, &signaling.Participant{
		ConnectionID: connID,
		UserID:       userID,
		UserName:     userName,
		RoomID:       roomID,
	})
}

func (s *RoomDirectorySuite) TestEnsureRoomIsIdempotent() {
	rm := s.dir.ensureRoom("r1", s.now)
	s.Equal("r1", rm.id)
	s.Equal(s.now, rm.createdAt)
	s.Equal(s.now, rm.lastActivityAt)

	later := s.now.Add(time.Minute)
	again := s.dir.ensureRoom("r1", later)
	s.Same(rm, again)
	s.Equal(s.now, again.createdAt, "ensure must not reset timestamps")
}

func (s *RoomDirectorySuite) TestAddMemberRefreshesActivity() {
	s.dir.addMember("r1", "A", s.now)

	later := s.now.Add(10 * time.Minute)
	s.dir.addMember("r1", "B", later)

	rm := s.dir.get("r1")
	s.Require().NotNil(rm)
	s.Len(rm.members, 2)
	s.Equal(later, rm.lastActivityAt)
	s.Equal(s.now, rm.createdAt)
}

func (s *RoomDirectorySuite) TestRemoveLastMemberDeletesRoom() {
	s.dir.addMember("r1", "A", s.now)
	s.dir.addMember("r1", "B", s.now)

	s.dir.removeMember("r1", "A")
	s.NotNil(s.dir.get("r1"))

	s.dir.removeMember("r1", "B")
	s.Nil(s.dir.get("r1"), "empty room must not persist")
	s.Zero(s.dir.size())
}

func (s *RoomDirectorySuite) TestRemoveFromUnknownRoomIsNoop() {
	s.NotPanics(func() {
		s.dir.removeMember("nope", "A")
	})
}

func (s *RoomDirectorySuite) TestListOtherMembers() {
	s.dir.addMember("r1", "A", s.now)
	s.dir.addMember("r1", "B", s.now)
	s.dir.addMember("r1", "C", s.now)
	s.register("A", "u1", "Alice", "r1")
	s.register("B", "u2", "Bob", "r1")
	// C has no registry entry, simulating inconsistent state

	members := s.dir.listOtherMembers(s.reg, "r1", "A")
	s.Require().Len(members, 1)
	s.Equal("B", members[0].ConnectionID)
}

func (s *RoomDirectorySuite) TestListOtherMembersUnknownRoom() {
	members := s.dir.listOtherMembers(s.reg, "nope", "A")
	s.NotNil(members, "snapshot must encode as an empty JSON array")
	s.Empty(members)
}

func (s *RoomDirectorySuite) TestSweepIdle() {
	s.dir.addMember("old", "A", s.now)
	s.dir.addMember("fresh", "B", s.now.Add(25*time.Minute))

	sweepAt := s.now.Add(31 * time.Minute)
	idle := s.dir.sweepIdle(sweepAt, 30*time.Minute)
	s.Require().Len(idle, 1)
	s.Equal("old", idle[0].id)

	// sweep does not delete
	s.NotNil(s.dir.get("old"))
}

func (s *RoomDirectorySuite) TestSweepIdleExactThresholdSurvives() {
	s.dir.addMember("r1", "A", s.now)
	idle := s.dir.sweepIdle(s.now.Add(30*time.Minute), 30*time.Minute)
	s.Empty(idle)
}

type ConnRegistrySuite struct {
	suite.Suite
	reg *connRegistry
}

func TestConnRegistrySuite(t *testing.T) {
	suite.Run(t, new(ConnRegistrySuite))
}

func (s *ConnRegistrySuite) SetupTest() {
	s.reg = newConnRegistry()
}

func (s *ConnRegistrySuite) TestLifecycle() {
	s.Nil(s.reg.lookup("A"), "unknown id is a valid not-joined state")

	p := &signaling.Participant{ConnectionID: "A", UserID: "u1", UserName: "Alice", RoomID: "r1"}
	s.reg.register("A", p)
	s.Same(p, s.reg.lookup("A"))
	s.Equal(1, s.reg.size())

	s.reg.remove("A")
	s.Nil(s.reg.lookup("A"))
	s.Zero(s.reg.size())

	s.NotPanics(func() { s.reg.remove("A") })
}

func (s *ConnRegistrySuite) TestRegisterOverwrites() {
	s.reg.register("A", &signaling.Participant{ConnectionID: "A", RoomID: "r1"})
	s.reg.register("A", &signaling.Participant{ConnectionID: "A", RoomID: "r2"})
	s.Equal("r2", s.reg.lookup("A").RoomID)
	s.Equal(1, s.reg.size())
}

func (s *ConnRegistrySuite) TestClear() {
	s.reg.register("A", &signaling.Participant{ConnectionID: "A"})
	s.reg.register("B", &signaling.Participant{ConnectionID: "B"})
	s.reg.clear()
	s.Zero(s.reg.size())
}
