package email

const subjectTeamInviteFmt = "You have been invited to %s on Educare+"
